package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldKind is the expected type of one conversational answer.
type FieldKind int

const (
	// Text is a required free-text field.
	Text FieldKind = iota
	// Integer is a required whole number.
	Integer
	// Decimal is a required decimal number.
	Decimal
	// OptionalText accepts anything, including an empty reply.
	OptionalText
)

// Caller identifies who is talking: the chat address the session lives on,
// the opaque user identity, and the display name used for admin matching.
type Caller struct {
	ChatID      string
	UserID      string
	DisplayName string
}

// Values is the per-session scratch area. Entries are typed by the step
// that validated them: string, int, or decimal.Decimal.
type Values map[string]interface{}

func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

func (v Values) Int(key string) int {
	n, _ := v[key].(int)
	return n
}

func (v Values) Decimal(key string) decimal.Decimal {
	d, ok := v[key].(decimal.Decimal)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Step is one prompt/validate/store stage of a flow.
type Step struct {
	Key     string
	Prompt  string
	Field   FieldKind
	Invalid string // re-prompt shown when validation fails
}

// Flow is the ordered field list for one entity kind, plus its entry gate
// and commit action. The engine runs any flow the same way; the flows
// themselves are defined next to the services they commit through.
type Flow struct {
	Kind string
	// EntryGuard, when set, is checked before the first prompt. A returned
	// error denies entry and no session is created.
	EntryGuard func(ctx context.Context, caller Caller) error
	Steps      []Step
	// Commit persists the collected values and returns the confirmation
	// text. It runs after the final step validates; significant time may
	// have passed since the session started, so referential checks belong
	// here, not in EntryGuard alone.
	Commit func(ctx context.Context, caller Caller, values Values) (string, error)
}

// parse validates raw text against a field kind and returns the typed value.
func parse(field FieldKind, text string) (interface{}, bool) {
	text = strings.TrimSpace(text)
	switch field {
	case Text:
		if text == "" {
			return nil, false
		}
		return text, true
	case Integer:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, false
		}
		return n, true
	case Decimal:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, false
		}
		return d, true
	case OptionalText:
		return text, true
	default:
		return nil, false
	}
}

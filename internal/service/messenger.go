package service

import "context"

// Button is one inline action attached to a prompt message. Data is the
// opaque callback payload echoed back when the button is pressed.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// MessageRef identifies a delivered message so it can later be edited
// in place (the approval prompt is rewritten once a decision lands).
type MessageRef struct {
	ChatID    string
	MessageID string
}

// Messenger is the outbound half of the chat channel. Delivery is
// best-effort: callers decide whether a failure matters. An already
// committed status transition is never rolled back because a
// notification could not be delivered.
type Messenger interface {
	SendText(ctx context.Context, chatID, text string) error
	SendPrompt(ctx context.Context, chatID, text string, buttons [][]Button) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string) error
}

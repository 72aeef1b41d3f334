package conversation

import (
	"context"
	"fmt"
	"sync"

	"nutscredit/internal/metrics"
)

// Engine drives the multi-step add conversations. One session per chat id;
// a chat is either idle or inside exactly one flow. Sessions for different
// chats are independent and interleave freely: the engine holds no lock
// while a commit runs, only while session state is read or mutated.
type Engine struct {
	mu       sync.Mutex
	flows    map[string]*Flow
	sessions map[string]*session // keyed by chat id
}

type session struct {
	flow   *Flow
	caller Caller
	step   int
	values Values
}

func NewEngine() *Engine {
	return &Engine{
		flows:    make(map[string]*Flow),
		sessions: make(map[string]*session),
	}
}

// Register adds a flow for an entity kind. Called once at wiring time.
func (e *Engine) Register(f *Flow) {
	e.flows[f.Kind] = f
}

// Start enters the first step of the flow for kind and returns its prompt.
// The entry guard, if any, runs first; a guard denial creates no session.
// Starting while a session is already active replaces it, scratch included.
func (e *Engine) Start(ctx context.Context, caller Caller, kind string) (string, error) {
	e.mu.Lock()
	flow, ok := e.flows[kind]
	e.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no conversation flow for %q", kind)
	}

	if flow.EntryGuard != nil {
		if err := flow.EntryGuard(ctx, caller); err != nil {
			return "", err
		}
	}

	e.mu.Lock()
	if _, active := e.sessions[caller.ChatID]; !active {
		metrics.ConversationsActive.Inc()
	}
	e.sessions[caller.ChatID] = &session{
		flow:   flow,
		caller: caller,
		values: make(Values),
	}
	e.mu.Unlock()

	return flow.Steps[0].Prompt, nil
}

// Active reports whether the chat currently has a conversation open.
func (e *Engine) Active(chatID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[chatID]
	return ok
}

// HandleText feeds one inbound message to the chat's open session.
// handled=false means no session is open and the text belongs to someone
// else's dispatch logic. On a validation failure the step does not advance
// and the reply is the step's corrective re-prompt. After the last step
// validates, the flow commits, the scratch is cleared, and the session ends
// whether or not the commit succeeded.
func (e *Engine) HandleText(ctx context.Context, caller Caller, text string) (reply string, handled bool, err error) {
	e.mu.Lock()
	sess, ok := e.sessions[caller.ChatID]
	if !ok {
		e.mu.Unlock()
		return "", false, nil
	}

	step := sess.flow.Steps[sess.step]
	value, valid := parse(step.Field, text)
	if !valid {
		e.mu.Unlock()
		return step.Invalid, true, nil
	}

	sess.values[step.Key] = value
	if sess.step < len(sess.flow.Steps)-1 {
		sess.step++
		next := sess.flow.Steps[sess.step].Prompt
		e.mu.Unlock()
		return next, true, nil
	}

	// Final step. End the session before committing so the commit runs
	// without the engine lock and a slow store never blocks other chats.
	delete(e.sessions, caller.ChatID)
	metrics.ConversationsActive.Dec()
	flow, values := sess.flow, sess.values
	e.mu.Unlock()

	confirmation, commitErr := flow.Commit(ctx, sess.caller, values)
	if commitErr != nil {
		return "", true, commitErr
	}
	return confirmation, true, nil
}

// Cancel ends the chat's open session and discards its scratch values.
// Returns the kind that was cancelled, or cancelled=false if the chat was
// idle. Only the issuing chat's own state is touched.
func (e *Engine) Cancel(chatID string) (kind string, cancelled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[chatID]
	if !ok {
		return "", false
	}
	delete(e.sessions, chatID)
	metrics.ConversationsActive.Dec()
	return sess.flow.Kind, true
}

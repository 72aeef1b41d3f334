package chat

import "nutscredit/internal/service"

// Inbound frame types
const (
	FrameMessage  = "message"
	FrameCallback = "callback"
)

// Outbound frame types
const (
	FramePrompt = "prompt"
	FrameEdit   = "edit"
)

// InboundFrame is one event from a connected chat endpoint: either a text
// message (command or conversational reply) or an inline-button callback.
type InboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	// Data is the opaque payload of the pressed button.
	Data string `json:"data,omitempty"`
	// MessageID names the prompt message the callback came from, so a
	// decision can rewrite that message in place.
	MessageID string `json:"message_id,omitempty"`
}

// OutboundFrame is one delivery to a chat endpoint. Prompts carry inline
// buttons and a message id; edits rewrite a previously sent message.
type OutboundFrame struct {
	Type      string             `json:"type"`
	MessageID string             `json:"message_id,omitempty"`
	Text      string             `json:"text"`
	Buttons   [][]service.Button `json:"buttons,omitempty"`
}

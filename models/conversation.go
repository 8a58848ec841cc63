package models

import "time"

// Turn is one completed customer/agent exchange.
type Turn struct {
	Customer string    `json:"customer"`
	Agent    string    `json:"agent"`
	Action   string    `json:"action,omitempty"` // resolved action kind, if any
	At       time.Time `json:"at"`
}

// ConversationContext holds a session's ordered turn history. It is owned
// exclusively by its session and feeds the LLM collaborator; monetary totals
// are never reconstructed from it (the session ledger is the source of truth).
type ConversationContext struct {
	SessionID string `json:"sessionId"`
	Turns     []Turn `json:"turns"`
}

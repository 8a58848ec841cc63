package models

// Reply kinds sent back to the customer.
const (
	ReplyResolved      = "resolved"
	ReplyClarification = "clarification"
	ReplyRejected      = "rejected"
	ReplyInfo          = "info"
	ReplyError         = "error"
)

// ChatMessage is the inbound message envelope, one per turn.
type ChatMessage struct {
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content" binding:"required"`
}

// ChatReply is the outbound reply, one per turn.
type ChatReply struct {
	SessionID string       `json:"sessionId"`
	Kind      string       `json:"kind"`
	Response  string       `json:"response"`
	Offers    []Offer      `json:"offers,omitempty"`
	Entry     *LedgerEntry `json:"entry,omitempty"`
}

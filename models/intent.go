package models

// Intent kinds. The set is closed: anything the LLM proposes outside of it is
// treated as IntentUnknown and answered with a clarification.
const (
	IntentQuery   = "query"
	IntentBook    = "book"
	IntentModify  = "modify"
	IntentCancel  = "cancel"
	IntentInfo    = "info"
	IntentChat    = "chat"
	IntentUnknown = "unknown"
)

// Intent is the structured interpretation of one customer turn, extracted
// from the LLM collaborator's proposal. It is transient: produced once per
// turn, consumed by the resolver, never persisted.
type Intent struct {
	Kind        string      `json:"action"`
	Category    string      `json:"category,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`
	Ref         *SlotRef    `json:"ref,omitempty"`
	AgreedPrice float64     `json:"agreedPrice,omitempty"`
	EntrySeq    int64       `json:"entrySeq,omitempty"` // modify/cancel target
	NewRef      *SlotRef    `json:"newRef,omitempty"`   // modify replacement
	Reply       string      `json:"reply,omitempty"`    // plain-text passthrough for chat/info
}

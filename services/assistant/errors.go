// File: services/assistant/errors.go
package assistant

import "fmt"

// AssistError codes surfaced to transports.
const (
	CodeSessionBusy      = "SESSION_BUSY"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

type AssistError struct {
	Code    string
	Message string
}

func (e *AssistError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSessionBusyError() error {
	return &AssistError{
		Code:    CodeSessionBusy,
		Message: "a previous message for this session is still being processed",
	}
}

func NewStoreUnavailableError(msg string) error {
	return &AssistError{
		Code:    CodeStoreUnavailable,
		Message: msg,
	}
}

// Package parsererror defines the typed diagnostic errors produced while
// extracting transactions from message text. These are non-fatal: the
// orchestrator logs them and continues with the remaining messages.
package parsererror

import (
	"fmt"
	"strings"
	"time"
)

// ParseError reports that a required field could not be extracted from a
// message.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("failed to parse %s from %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReconciliationError reports that the item lines of a message could not be
// reconciled with its confirmation numbers, even after bundled-quantity
// expansion. The message's extraction is aborted as a whole.
type ReconciliationError struct {
	Date    time.Time
	Items   []string
	Numbers int
}

func (e *ReconciliationError) Error() string {
	if e.Date.IsZero() {
		return "unable to parse message: item count does not match confirmation numbers"
	}
	return fmt.Sprintf("unable to parse message from %s with transactions: %s",
		e.Date.Format("2006-01-02 15:04:05"), strings.Join(e.Items, " "))
}

// Package models defines the core data structures shared across the
// application.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the canonical timestamp layout used for display and export.
const DateLayout = "2006-01-02 15:04:05"

// Transaction is one market trade extracted from a confirmation email.
// It is immutable after creation.
//
// Amount is in minor currency units (cents): negative for purchases (money
// leaving the account), positive for sale proceeds. Number is the
// provider-issued confirmation number and acts as the natural key; two
// transactions with the same Number are the same real-world event.
type Transaction struct {
	Title  string    `csv:"name" yaml:"name"`
	Amount int64     `csv:"amount" yaml:"amount"`
	Date   time.Time `csv:"date" yaml:"date"`
	Number string    `csv:"confirmation_number" yaml:"confirmation_number"`
}

// String returns a compact human-readable form, mainly for diagnostics.
func (t Transaction) String() string {
	return fmt.Sprintf("%s %d %s %s", t.Title, t.Amount, t.Date.Format(DateLayout), t.Number)
}

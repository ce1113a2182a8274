// Package parser extracts market transactions from the plain-text body of
// Community Market confirmation emails.
//
// Parse is stateless and never fails hard on malformed input: an
// unrecognized or inconsistent message yields an empty result plus a
// diagnostic error the caller can log. Only purchase and sale confirmations
// are understood; anything else is silently skipped.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"steam-ledger/internal/currencyutils"
	"steam-ledger/internal/dateutils"
	"steam-ledger/internal/models"
	"steam-ledger/internal/parsererror"
)

// Subject markers identifying the two recognized confirmation layouts.
const (
	SubjectPurchase = "Thank you for your Community Market purchase"
	SubjectSale     = "You have sold an item on the Community Market"
)

const (
	// accountAnchor is the account-activity link preceding the item lines.
	// Everything before it is header boilerplate.
	accountAnchor = "https://store.steampowered.com/account"

	confirmationMarker = "Confirmation Number"
	dateMarker         = "Date Confirmed"

	// Item collection ends at a mode-specific terminator line.
	purchaseTerminator = "Total"
	saleTerminator     = "------"
)

// amountPattern matches the money part of an item line, e.g. ": $ 12.34".
var amountPattern = regexp.MustCompile(`:\s+\$?\s*\d[\d,]*\.\d{2}`)

// quantityPattern matches the leading count of a bundled-quantity item
// line, e.g. "3 Gem".
var quantityPattern = regexp.MustCompile(`^(\d+)\s+`)

// Parse extracts all transactions from one raw message body. A message that
// is not a market confirmation returns (nil, nil). A confirmation that
// cannot be fully reconciled returns (nil, diagnostic) and must not
// contribute partial data.
func Parse(text string) ([]models.Transaction, error) {
	var purchase bool
	switch {
	case strings.Contains(text, SubjectPurchase):
		purchase = true
	case strings.Contains(text, SubjectSale):
		purchase = false
	default:
		return nil, nil
	}

	c := newCursor(text)
	if _, ok := c.seek(accountAnchor); !ok {
		return nil, &parsererror.ParseError{
			Field: "account link anchor",
			Err:   fmt.Errorf("marker %q not found", accountAnchor),
		}
	}

	terminator := saleTerminator
	if purchase {
		terminator = purchaseTerminator
	}

	var names []string
	var amounts []int64
	for _, line := range c.collectUntil(terminator) {
		name, cents, err := splitItemLine(line)
		if err != nil {
			return nil, err
		}
		if purchase {
			cents = -cents
		}
		names = append(names, name)
		amounts = append(amounts, cents)
	}
	if len(names) == 0 {
		return nil, nil
	}

	numbers, err := confirmationNumbers(c)
	if err != nil {
		return nil, err
	}
	date, err := confirmationDate(c)
	if err != nil {
		return nil, err
	}

	if len(numbers) != len(names) {
		names, amounts, err = expandQuantities(names, amounts, len(numbers), date)
		if err != nil {
			return nil, err
		}
	}

	transactions := make([]models.Transaction, len(names))
	for i := range names {
		transactions[i] = models.Transaction{
			Title:  names[i],
			Amount: amounts[i],
			Date:   date,
			Number: numbers[i],
		}
	}
	return transactions, nil
}

// splitItemLine splits "Name: $ 12.34" into the item name and its amount in
// minor units. The name keeps any quantity prefix; that is resolved later
// during reconciliation.
func splitItemLine(line string) (string, int64, error) {
	loc := amountPattern.FindStringIndex(line)
	if loc == nil {
		return "", 0, &parsererror.ParseError{
			Field: "item line",
			Value: line,
			Err:   fmt.Errorf("no amount found"),
		}
	}

	name := strings.TrimSpace(line[:loc[0]])
	cents, err := currencyutils.ParseCents(strings.TrimLeft(line[loc[0]:loc[1]], ": "))
	if err != nil {
		return "", 0, &parsererror.ParseError{Field: "item amount", Value: line, Err: err}
	}
	return name, cents, nil
}

// confirmationNumbers extracts the confirmation numbers following the
// marker line. Tokens after the first two words are the numbers; some
// provider layouts put them on the following line instead.
func confirmationNumbers(c *cursor) ([]string, error) {
	line, ok := c.seek(confirmationMarker)
	if !ok {
		return nil, &parsererror.ParseError{
			Field: "confirmation numbers",
			Err:   fmt.Errorf("marker %q not found", confirmationMarker),
		}
	}

	tokens := strings.Fields(line)
	if len(tokens) > 2 {
		return stripCommas(tokens[2:]), nil
	}

	next, ok := c.next()
	if fields := strings.Fields(next); ok && len(fields) > 0 {
		return stripCommas(fields), nil
	}
	return nil, &parsererror.ParseError{
		Field: "confirmation numbers",
		Value: line,
		Err:   fmt.Errorf("no numbers after marker"),
	}
}

// confirmationDate parses the date on the marker line, falling back to the
// next line for the layout variant that wraps it.
func confirmationDate(c *cursor) (time.Time, error) {
	line, ok := c.seek(dateMarker)
	if !ok {
		return time.Time{}, &parsererror.ParseError{
			Field: "confirmation date",
			Err:   fmt.Errorf("marker %q not found", dateMarker),
		}
	}

	if date, err := dateutils.ParseLabeledDate(line, dateMarker); err == nil {
		return date, nil
	}

	next, ok := c.next()
	if ok {
		if date, err := dateutils.ParseDate(next); err == nil {
			return date, nil
		}
	}
	return time.Time{}, &parsererror.ParseError{
		Field: "confirmation date",
		Value: line,
		Err:   fmt.Errorf("unrecognized date format"),
	}
}

// expandQuantities resolves the bundled-quantity layout, where one item
// line such as "3 Gem" stands for several identical trades. Each name's
// leading count (default 1) replicates its entry; if the expanded total
// still disagrees with the confirmation-number count, the whole message is
// rejected.
func expandQuantities(names []string, amounts []int64, wantTotal int, date time.Time) ([]string, []int64, error) {
	counts := make([]int, len(names))
	corrected := make([]string, len(names))
	total := 0
	for i, name := range names {
		counts[i], corrected[i] = splitQuantity(name)
		total += counts[i]
	}

	if total != wantTotal {
		return nil, nil, &parsererror.ReconciliationError{
			Date:    date,
			Items:   names,
			Numbers: wantTotal,
		}
	}

	expandedNames := make([]string, 0, wantTotal)
	expandedAmounts := make([]int64, 0, wantTotal)
	for i := range corrected {
		for n := 0; n < counts[i]; n++ {
			expandedNames = append(expandedNames, corrected[i])
			expandedAmounts = append(expandedAmounts, amounts[i])
		}
	}
	return expandedNames, expandedAmounts, nil
}

// splitQuantity extracts a leading integer count from an item name,
// defaulting to 1 when absent.
func splitQuantity(name string) (int, string) {
	match := quantityPattern.FindStringSubmatch(name)
	if match == nil {
		return 1, name
	}
	count, err := strconv.Atoi(match[1])
	if err != nil || count < 1 {
		return 1, name
	}
	return count, strings.TrimPrefix(name, match[0])
}

func stripCommas(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		out[i] = strings.ReplaceAll(token, ",", "")
	}
	return out
}

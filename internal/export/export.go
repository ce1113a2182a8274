// Package export writes the stored ledger out to CSV or YAML.
package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"steam-ledger/internal/currencyutils"
	"steam-ledger/internal/models"
)

// Formats accepted by Write.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// row is the flat export representation: dates rendered with the canonical
// layout, amounts as signed decimal strings.
type row struct {
	Name   string `csv:"name" yaml:"name"`
	Amount string `csv:"amount" yaml:"amount"`
	Date   string `csv:"date" yaml:"date"`
	Number string `csv:"confirmation_number" yaml:"confirmation_number"`
}

// Write renders transactions to path in the given format.
func Write(transactions []models.Transaction, path, format string) error {
	rows := make([]row, len(transactions))
	for i, t := range transactions {
		rows[i] = row{
			Name:   t.Title,
			Amount: currencyutils.FormatCents(t.Amount),
			Date:   t.Date.Format(models.DateLayout),
			Number: t.Number,
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file %s: %w", path, err)
	}
	defer file.Close()

	switch format {
	case FormatCSV:
		if err := gocsv.Marshal(rows, file); err != nil {
			return fmt.Errorf("write CSV export: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(file)
		if err := encoder.Encode(rows); err != nil {
			return fmt.Errorf("write YAML export: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("write YAML export: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	return nil
}

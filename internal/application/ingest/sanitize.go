package ingestapp

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Spreadsheet exports carry timestamps in a handful of shapes; parsing tries
// these in order and the first hit wins.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Amount parses a monetary cell into a decimal. Blank or unparseable input
// yields nil. It never returns an error; dirty spreadsheet values are a normal
// condition for this pipeline, not a failure.
func Amount(raw string) *decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil
	}
	return &d
}

// AmountOrDefault parses a monetary cell, substituting def for blank input.
// The second return is false only when the cell held non-blank text that could
// not be parsed; callers use it to apply the line-item skip rule while still
// treating blank cells as an ordinary zero.
func AmountOrDefault(raw string, def decimal.Decimal) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def, true
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return def, false
	}
	return d, true
}

// Timestamp parses a date/datetime cell on a best-effort basis. Blank or
// unparseable input yields nil. Values with an explicit offset keep it; bare
// values are taken as UTC, consistently within a run.
func Timestamp(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t
		}
	}
	return nil
}

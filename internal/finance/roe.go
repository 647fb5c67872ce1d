// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package finance implements the deterministic financial calculations
// exposed to the model as tools.
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// RETURN ON EQUITY
// =============================================================================

// ErrZeroEquity is returned when shareholder equity is zero. Its text is the
// exact message surfaced to the model, so callers can pass it through as-is.
var ErrZeroEquity = errors.New("equity cannot be zero")

// Interpretation band thresholds on the raw ROE ratio. Each band test is a
// strict greater-than: a ratio of exactly 0.15 interprets as "good", not
// "excellent".
const (
	roeExcellentAbove = 0.15
	roeGoodAbove      = 0.10
	roeAverageAbove   = 0.05
)

// ROEResult holds the outcome of a return-on-equity calculation.
type ROEResult struct {
	// Ratio is the raw net_income / shareholder_equity value.
	Ratio float64
	// Interpretation is the qualitative band label for Ratio.
	Interpretation string
	// Inputs echoed back for the model's benefit.
	NetIncome         float64
	ShareholderEquity float64
}

// ROE computes return on shareholder equity.
//
// A zero equity returns ErrZeroEquity rather than propagating an infinity;
// the caller reports it as a normal payload, not a failure.
func ROE(netIncome, shareholderEquity float64) (*ROEResult, error) {
	if shareholderEquity == 0 {
		return nil, ErrZeroEquity
	}

	ratio := netIncome / shareholderEquity
	return &ROEResult{
		Ratio:             ratio,
		Interpretation:    interpretROE(ratio),
		NetIncome:         netIncome,
		ShareholderEquity: shareholderEquity,
	}, nil
}

// Percent formats the ratio as a percentage string with 2 decimal places,
// e.g. 0.16666 -> "16.67%".
func (r *ROEResult) Percent() string {
	return FormatPercent(r.Ratio * 100)
}

// interpretROE maps a raw ratio onto its qualitative band.
func interpretROE(ratio float64) string {
	switch {
	case ratio > roeExcellentAbove:
		return "excellent(>15%)"
	case ratio > roeGoodAbove:
		return "good(10%-15%)"
	case ratio > roeAverageAbove:
		return "average(5%-10%)"
	default:
		return "poor(<5%)"
	}
}

// =============================================================================
// SHARED FORMATTING
// =============================================================================

// FormatPercent formats an already-scaled percentage value with 2 decimal
// places, e.g. 40.0 -> "40.00%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatPercentWhole formats an already-scaled percentage value with no
// decimal places, e.g. 20.0 -> "20%".
func FormatPercentWhole(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package finance implements the deterministic financial calculations
// exposed to the model as tools.
package finance

// =============================================================================
// INCOME STATEMENT
// =============================================================================

// DefaultTaxRate is the tax rate applied when the caller does not supply one.
const DefaultTaxRate = 0.2

// Margin health thresholds, in percentage points.
const (
	grossMarginLowBelow     = 20.0
	operatingMarginLowBelow = 10.0
	netMarginLowBelow       = 5.0
)

// Health-check warning strings. The "low" and "loss" checks are independent
// on purpose: a negative margin triggers both its low warning and its loss
// warning, and that stacking is part of the contract.
const (
	warnGrossMarginLow     = "gross margin low (<20%)"
	warnOperatingMarginLow = "operating margin low (<10%)"
	warnNetMarginLow       = "net margin low (<5%)"
	warnOperatingLoss      = "operating loss"
	warnNetLoss            = "net loss"
	noteHealthy            = "financials healthy"
)

// IncomeStatementInput holds the inputs for a simplified income statement.
// Revenue, CostOfGoodsSold, and OperatingExpenses are required by the tool
// schema; the remaining fields default to zero (and TaxRate to
// DefaultTaxRate) at the tool boundary.
type IncomeStatementInput struct {
	Revenue              float64
	CostOfGoodsSold      float64
	OperatingExpenses    float64
	NonOperatingIncome   float64
	NonOperatingExpenses float64
	TaxRate              float64
}

// IncomeStatement holds every derived line of the statement. Margin fields
// are percentage values (40.0 means 40%); they are zero whenever revenue is
// zero or negative, which also suppresses the margin-keyed warnings.
type IncomeStatement struct {
	Input IncomeStatementInput

	GrossProfit     float64
	GrossMargin     float64
	OperatingIncome float64
	OperatingMargin float64
	PretaxIncome    float64
	IncomeTax       float64
	NetIncome       float64
	NetMargin       float64

	// Warnings from the health check; contains the single healthy note
	// when nothing triggered.
	Warnings []string
}

// BuildIncomeStatement derives the full statement from its inputs.
//
// Tax is charged only on positive pretax income: a loss carries no modeled
// tax benefit or refund, so net income equals pretax income on a loss.
func BuildIncomeStatement(in IncomeStatementInput) *IncomeStatement {
	s := &IncomeStatement{Input: in}

	s.GrossProfit = in.Revenue - in.CostOfGoodsSold
	s.OperatingIncome = s.GrossProfit - in.OperatingExpenses
	s.PretaxIncome = s.OperatingIncome + in.NonOperatingIncome - in.NonOperatingExpenses

	if s.PretaxIncome > 0 {
		s.IncomeTax = s.PretaxIncome * in.TaxRate
	}
	s.NetIncome = s.PretaxIncome - s.IncomeTax

	if in.Revenue > 0 {
		s.GrossMargin = s.GrossProfit / in.Revenue * 100
		s.OperatingMargin = s.OperatingIncome / in.Revenue * 100
		s.NetMargin = s.NetIncome / in.Revenue * 100
	}

	s.Warnings = s.healthWarnings()
	return s
}

// healthWarnings runs the margin health check. Checks are keyed off margins,
// not absolute amounts, so a zero-revenue statement reports healthy even at
// an absolute loss.
func (s *IncomeStatement) healthWarnings() []string {
	var warnings []string

	if s.GrossMargin < grossMarginLowBelow {
		warnings = append(warnings, warnGrossMarginLow)
	}
	if s.OperatingMargin < operatingMarginLowBelow {
		warnings = append(warnings, warnOperatingMarginLow)
	}
	if s.NetMargin < netMarginLowBelow {
		warnings = append(warnings, warnNetMarginLow)
	}
	if s.OperatingMargin < 0 {
		warnings = append(warnings, warnOperatingLoss)
	}
	if s.NetMargin < 0 {
		warnings = append(warnings, warnNetLoss)
	}

	if len(warnings) == 0 {
		warnings = []string{noteHealthy}
	}
	return warnings
}

// GrossMarginPercent formats the gross margin as a 2-decimal percentage.
func (s *IncomeStatement) GrossMarginPercent() string {
	return FormatPercent(s.GrossMargin)
}

// OperatingMarginPercent formats the operating margin as a 2-decimal percentage.
func (s *IncomeStatement) OperatingMarginPercent() string {
	return FormatPercent(s.OperatingMargin)
}

// NetMarginPercent formats the net margin as a 2-decimal percentage.
func (s *IncomeStatement) NetMarginPercent() string {
	return FormatPercent(s.NetMargin)
}

// TaxRatePercent formats the applied tax rate as a whole percentage,
// e.g. 0.2 -> "20%".
func (s *IncomeStatement) TaxRatePercent() string {
	return FormatPercentWhole(s.Input.TaxRate * 100)
}

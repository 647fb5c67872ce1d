// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package finance implements the deterministic financial calculations
// exposed to the model as tools.
package finance

import (
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// RETURN ON EQUITY
// =============================================================================

func TestROE(t *testing.T) {
	tests := []struct {
		name        string
		netIncome   float64
		equity      float64
		wantRatio   float64
		wantPercent string
		wantInterp  string
	}{
		{
			name:        "strong ratio",
			netIncome:   200000,
			equity:      1000000,
			wantRatio:   0.2,
			wantPercent: "20.00%",
			wantInterp:  "excellent(>15%)",
		},
		{
			name:        "good ratio",
			netIncome:   120000,
			equity:      1000000,
			wantRatio:   0.12,
			wantPercent: "12.00%",
			wantInterp:  "good(10%-15%)",
		},
		{
			name:        "average ratio",
			netIncome:   70000,
			equity:      1000000,
			wantRatio:   0.07,
			wantPercent: "7.00%",
			wantInterp:  "average(5%-10%)",
		},
		{
			name:        "poor ratio",
			netIncome:   20000,
			equity:      1000000,
			wantRatio:   0.02,
			wantPercent: "2.00%",
			wantInterp:  "poor(<5%)",
		},
		{
			name:        "negative income",
			netIncome:   -50000,
			equity:      1000000,
			wantRatio:   -0.05,
			wantPercent: "-5.00%",
			wantInterp:  "poor(<5%)",
		},
		{
			name:        "repeating decimal rounds",
			netIncome:   100000,
			equity:      600000,
			wantRatio:   100000.0 / 600000.0,
			wantPercent: "16.67%",
			wantInterp:  "excellent(>15%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ROE(tt.netIncome, tt.equity)
			if err != nil {
				t.Fatalf("ROE(%v, %v) error: %v", tt.netIncome, tt.equity, err)
			}
			if got.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
			if got.Percent() != tt.wantPercent {
				t.Errorf("Percent() = %q, want %q", got.Percent(), tt.wantPercent)
			}
			if got.Interpretation != tt.wantInterp {
				t.Errorf("Interpretation = %q, want %q", got.Interpretation, tt.wantInterp)
			}
			if got.NetIncome != tt.netIncome || got.ShareholderEquity != tt.equity {
				t.Errorf("inputs not echoed: got (%v, %v), want (%v, %v)",
					got.NetIncome, got.ShareholderEquity, tt.netIncome, tt.equity)
			}
		})
	}
}

func TestROEZeroEquity(t *testing.T) {
	for _, netIncome := range []float64{0, 100000, -100000} {
		got, err := ROE(netIncome, 0)
		if got != nil {
			t.Errorf("ROE(%v, 0) result = %+v, want nil", netIncome, got)
		}
		if !errors.Is(err, ErrZeroEquity) {
			t.Errorf("ROE(%v, 0) error = %v, want ErrZeroEquity", netIncome, err)
		}
	}
}

func TestROEZeroEquityMessage(t *testing.T) {
	// The error text doubles as the payload message shown to the model.
	if got := ErrZeroEquity.Error(); got != "equity cannot be zero" {
		t.Errorf("ErrZeroEquity = %q, want %q", got, "equity cannot be zero")
	}
}

func TestInterpretROEBoundaries(t *testing.T) {
	// Band tests are strict greater-than, so every threshold value falls
	// into the band below it.
	tests := []struct {
		ratio float64
		want  string
	}{
		{0.16, "excellent(>15%)"},
		{0.15, "good(10%-15%)"},
		{0.11, "good(10%-15%)"},
		{0.10, "average(5%-10%)"},
		{0.06, "average(5%-10%)"},
		{0.05, "poor(<5%)"},
		{0.01, "poor(<5%)"},
		{0, "poor(<5%)"},
		{-0.20, "poor(<5%)"},
	}

	for _, tt := range tests {
		if got := interpretROE(tt.ratio); got != tt.want {
			t.Errorf("interpretROE(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

// =============================================================================
// INCOME STATEMENT
// =============================================================================

func TestBuildIncomeStatementHealthy(t *testing.T) {
	s := BuildIncomeStatement(IncomeStatementInput{
		Revenue:            10000000,
		CostOfGoodsSold:    6000000,
		OperatingExpenses:  2000000,
		NonOperatingIncome: 100000,
		TaxRate:            DefaultTaxRate,
	})

	if s.GrossProfit != 4000000 {
		t.Errorf("GrossProfit = %v, want 4000000", s.GrossProfit)
	}
	if s.OperatingIncome != 2000000 {
		t.Errorf("OperatingIncome = %v, want 2000000", s.OperatingIncome)
	}
	if s.PretaxIncome != 2100000 {
		t.Errorf("PretaxIncome = %v, want 2100000", s.PretaxIncome)
	}
	if s.IncomeTax != 420000 {
		t.Errorf("IncomeTax = %v, want 420000", s.IncomeTax)
	}
	if s.NetIncome != 1680000 {
		t.Errorf("NetIncome = %v, want 1680000", s.NetIncome)
	}

	if got := s.GrossMarginPercent(); got != "40.00%" {
		t.Errorf("GrossMarginPercent() = %q, want %q", got, "40.00%")
	}
	if got := s.OperatingMarginPercent(); got != "20.00%" {
		t.Errorf("OperatingMarginPercent() = %q, want %q", got, "20.00%")
	}
	if got := s.NetMarginPercent(); got != "16.80%" {
		t.Errorf("NetMarginPercent() = %q, want %q", got, "16.80%")
	}
	if got := s.TaxRatePercent(); got != "20%" {
		t.Errorf("TaxRatePercent() = %q, want %q", got, "20%")
	}

	if len(s.Warnings) != 1 || s.Warnings[0] != "financials healthy" {
		t.Errorf("Warnings = %v, want [financials healthy]", s.Warnings)
	}
}

func TestBuildIncomeStatementLoss(t *testing.T) {
	s := BuildIncomeStatement(IncomeStatementInput{
		Revenue:         1000,
		CostOfGoodsSold: 1200,
		TaxRate:         DefaultTaxRate,
	})

	if s.GrossProfit != -200 {
		t.Errorf("GrossProfit = %v, want -200", s.GrossProfit)
	}
	if s.OperatingIncome != -200 {
		t.Errorf("OperatingIncome = %v, want -200", s.OperatingIncome)
	}
	if s.PretaxIncome != -200 {
		t.Errorf("PretaxIncome = %v, want -200", s.PretaxIncome)
	}
	// Losses carry no tax.
	if s.IncomeTax != 0 {
		t.Errorf("IncomeTax = %v, want 0", s.IncomeTax)
	}
	if s.NetIncome != -200 {
		t.Errorf("NetIncome = %v, want -200", s.NetIncome)
	}
	if got := s.GrossMarginPercent(); got != "-20.00%" {
		t.Errorf("GrossMarginPercent() = %q, want %q", got, "-20.00%")
	}

	// Low-margin and loss warnings stack.
	want := []string{
		"gross margin low (<20%)",
		"operating margin low (<10%)",
		"net margin low (<5%)",
		"operating loss",
		"net loss",
	}
	if len(s.Warnings) != len(want) {
		t.Fatalf("Warnings = %v, want %v", s.Warnings, want)
	}
	for i, w := range want {
		if s.Warnings[i] != w {
			t.Errorf("Warnings[%d] = %q, want %q", i, s.Warnings[i], w)
		}
	}
}

func TestBuildIncomeStatementThinMargins(t *testing.T) {
	// Profitable but below every threshold: low warnings fire, loss
	// warnings do not.
	s := BuildIncomeStatement(IncomeStatementInput{
		Revenue:           100000,
		CostOfGoodsSold:   85000,
		OperatingExpenses: 12000,
		TaxRate:           DefaultTaxRate,
	})

	if s.GrossMargin != 15 {
		t.Errorf("GrossMargin = %v, want 15", s.GrossMargin)
	}
	if s.OperatingMargin != 3 {
		t.Errorf("OperatingMargin = %v, want 3", s.OperatingMargin)
	}

	joined := strings.Join(s.Warnings, "; ")
	for _, w := range []string{"gross margin low (<20%)", "operating margin low (<10%)", "net margin low (<5%)"} {
		if !strings.Contains(joined, w) {
			t.Errorf("Warnings missing %q: %v", w, s.Warnings)
		}
	}
	for _, w := range []string{"operating loss", "net loss"} {
		if strings.Contains(joined, w) {
			t.Errorf("Warnings should not contain %q: %v", w, s.Warnings)
		}
	}
}

func TestBuildIncomeStatementZeroRevenue(t *testing.T) {
	// No revenue means margins stay zero, so the margin-keyed checks all
	// pass even though the absolute numbers are a loss.
	s := BuildIncomeStatement(IncomeStatementInput{
		Revenue:           0,
		CostOfGoodsSold:   500,
		OperatingExpenses: 300,
		TaxRate:           DefaultTaxRate,
	})

	if s.GrossProfit != -500 {
		t.Errorf("GrossProfit = %v, want -500", s.GrossProfit)
	}
	if s.NetIncome != -800 {
		t.Errorf("NetIncome = %v, want -800", s.NetIncome)
	}
	if s.GrossMargin != 0 || s.OperatingMargin != 0 || s.NetMargin != 0 {
		t.Errorf("margins = (%v, %v, %v), want all 0",
			s.GrossMargin, s.OperatingMargin, s.NetMargin)
	}
	if len(s.Warnings) != 1 || s.Warnings[0] != "financials healthy" {
		t.Errorf("Warnings = %v, want [financials healthy]", s.Warnings)
	}
}

func TestBuildIncomeStatementNonOperating(t *testing.T) {
	s := BuildIncomeStatement(IncomeStatementInput{
		Revenue:              500000,
		CostOfGoodsSold:      200000,
		OperatingExpenses:    100000,
		NonOperatingIncome:   50000,
		NonOperatingExpenses: 30000,
		TaxRate:              0.25,
	})

	if s.PretaxIncome != 220000 {
		t.Errorf("PretaxIncome = %v, want 220000", s.PretaxIncome)
	}
	if s.IncomeTax != 55000 {
		t.Errorf("IncomeTax = %v, want 55000", s.IncomeTax)
	}
	if s.NetIncome != 165000 {
		t.Errorf("NetIncome = %v, want 165000", s.NetIncome)
	}
	if got := s.TaxRatePercent(); got != "25%" {
		t.Errorf("TaxRatePercent() = %q, want %q", got, "25%")
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{40.0, "40.00%"},
		{16.8, "16.80%"},
		{0, "0.00%"},
		{-20.0, "-20.00%"},
		{33.335, "33.33%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercentWhole(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{20.0, "20%"},
		{25.0, "25%"},
		{0, "0%"},
	}

	for _, tt := range tests {
		if got := FormatPercentWhole(tt.in); got != tt.want {
			t.Errorf("FormatPercentWhole(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

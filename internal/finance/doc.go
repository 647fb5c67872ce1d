// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package finance implements the deterministic financial calculations
// exposed to the model as tools.
//
// All functions in this package are pure: no I/O, no shared state, no
// dependence on anything but their inputs. The chat layer converts their
// results to tool payloads; this package owns the arithmetic, the
// interpretation bands, and the health-check warnings.
//
// # Key Functions
//
//   - ROE: return on equity with a qualitative interpretation band
//   - BuildIncomeStatement: multi-step income statement with margins
//     and health warnings
//
// # Usage
//
//	result, err := finance.ROE(2_000_000, 12_000_000)
//	if errors.Is(err, finance.ErrZeroEquity) {
//	    // equity of zero is a reportable condition, not a crash
//	}
//
//	stmt := finance.BuildIncomeStatement(finance.IncomeStatementInput{
//	    Revenue:           10_000_000,
//	    CostOfGoodsSold:   6_000_000,
//	    OperatingExpenses: 2_000_000,
//	    TaxRate:           finance.DefaultTaxRate,
//	})
//	fmt.Println(stmt.Warnings)
package finance

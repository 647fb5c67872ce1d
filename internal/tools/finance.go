// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the financial calculation tools exposed to the model.
// finance.go defines the built-in financial analysis tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jeranaias/finsight/internal/finance"
)

// =============================================================================
// ARGUMENT DECODING
// =============================================================================

// requireNumber extracts a required numeric argument by name.
func requireNumber(args map[string]interface{}, name string) (float64, error) {
	val, ok := args[name]
	if !ok || val == nil {
		return 0, &ValidationError{Param: name, Message: "missing required parameter: " + name}
	}

	f, ok := toFloat(val)
	if !ok {
		return 0, &ValidationError{Param: name, Message: "parameter " + name + " must be a number"}
	}
	return f, nil
}

// optionalNumber extracts an optional numeric argument, falling back to def
// when the argument is absent.
func optionalNumber(args map[string]interface{}, name string, def float64) (float64, error) {
	val, ok := args[name]
	if !ok || val == nil {
		return def, nil
	}

	f, ok := toFloat(val)
	if !ok {
		return 0, &ValidationError{Param: name, Message: "parameter " + name + " must be a number"}
	}
	return f, nil
}

// toFloat converts JSON-decoded numeric values. Arguments decoded from the
// wire arrive as float64, but programmatic callers may pass Go ints.
// Strings are deliberately not coerced: a mistyped argument becomes a
// recoverable validation error instead of a silent guess.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// =============================================================================
// RETURN ON EQUITY
// =============================================================================

// roeRequest is the validated argument set for calculate_roe.
type roeRequest struct {
	NetIncome         float64
	ShareholderEquity float64
}

func decodeROERequest(args map[string]interface{}) (roeRequest, error) {
	var req roeRequest
	var err error

	if req.NetIncome, err = requireNumber(args, "net_income"); err != nil {
		return req, err
	}
	if req.ShareholderEquity, err = requireNumber(args, "shareholder_equity"); err != nil {
		return req, err
	}
	return req, nil
}

// ROETool returns the calculate_roe tool definition.
func ROETool() *Tool {
	return &Tool{
		Name:        "calculate_roe",
		Description: "Calculate return on equity (ROE) from net income and shareholder equity",
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "net_income",
					Type:        "number",
					Required:    true,
					Description: "Net income after tax",
				},
				{
					Name:        "shareholder_equity",
					Type:        "number",
					Required:    true,
					Description: "Total shareholder equity",
				},
			},
		},
		Executor: &roeTool{},
	}
}

type roeTool struct{}

// Execute computes ROE. Zero equity is a defined outcome rather than an
// error: the payload carries a null roe and an explanatory message so the
// model can relay it to the user.
func (t *roeTool) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	req, err := decodeROERequest(args)
	if err != nil {
		return nil, err
	}

	result, err := finance.ROE(req.NetIncome, req.ShareholderEquity)
	if errors.Is(err, finance.ErrZeroEquity) {
		return map[string]interface{}{
			"roe":     nil,
			"message": err.Error(),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"roe":                result.Percent(),
		"interpretation":     result.Interpretation,
		"net_income":         result.NetIncome,
		"shareholder_equity": result.ShareholderEquity,
	}, nil
}

// =============================================================================
// INCOME STATEMENT
// =============================================================================

func decodeIncomeStatementRequest(args map[string]interface{}) (finance.IncomeStatementInput, error) {
	var in finance.IncomeStatementInput
	var err error

	if in.Revenue, err = requireNumber(args, "revenue"); err != nil {
		return in, err
	}
	if in.CostOfGoodsSold, err = requireNumber(args, "cost_of_goods_sold"); err != nil {
		return in, err
	}
	if in.OperatingExpenses, err = requireNumber(args, "operating_expenses"); err != nil {
		return in, err
	}
	if in.NonOperatingIncome, err = optionalNumber(args, "non_operating_income", 0); err != nil {
		return in, err
	}
	if in.NonOperatingExpenses, err = optionalNumber(args, "non_operating_expenses", 0); err != nil {
		return in, err
	}
	if in.TaxRate, err = optionalNumber(args, "tax_rate", finance.DefaultTaxRate); err != nil {
		return in, err
	}
	return in, nil
}

// IncomeStatementTool returns the calculate_income_statement tool definition.
func IncomeStatementTool() *Tool {
	return &Tool{
		Name:        "calculate_income_statement",
		Description: "Build a complete income statement from base figures, including gross profit, operating income, pretax income, tax, and net income",
		Schema: Schema{
			Parameters: []Parameter{
				{
					Name:        "revenue",
					Type:        "number",
					Required:    true,
					Description: "Total revenue",
				},
				{
					Name:        "cost_of_goods_sold",
					Type:        "number",
					Required:    true,
					Description: "Cost of goods sold",
				},
				{
					Name:        "operating_expenses",
					Type:        "number",
					Required:    true,
					Description: "Operating expenses",
				},
				{
					Name:        "non_operating_income",
					Type:        "number",
					Description: "Non-operating income",
					Default:     0.0,
				},
				{
					Name:        "non_operating_expenses",
					Type:        "number",
					Description: "Non-operating expenses",
					Default:     0.0,
				},
				{
					Name:        "tax_rate",
					Type:        "number",
					Description: "Income tax rate between 0 and 1 (0.2 means 20%)",
					Default:     finance.DefaultTaxRate,
				},
			},
		},
		Executor: &incomeStatementTool{},
	}
}

type incomeStatementTool struct{}

// Execute builds the income statement and returns every computed line plus
// the health check warnings. Margins are formatted as percentage strings;
// monetary amounts stay numeric.
func (t *incomeStatementTool) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	in, err := decodeIncomeStatementRequest(args)
	if err != nil {
		return nil, err
	}

	st := finance.BuildIncomeStatement(in)

	return map[string]interface{}{
		"revenue":                 st.Input.Revenue,
		"cost_of_goods_sold":      st.Input.CostOfGoodsSold,
		"gross_profit":            st.GrossProfit,
		"gross_profit_margin":     st.GrossMarginPercent(),
		"operating_expenses":      st.Input.OperatingExpenses,
		"operating_income":        st.OperatingIncome,
		"operating_income_margin": st.OperatingMarginPercent(),
		"non_operating_income":    st.Input.NonOperatingIncome,
		"non_operating_expenses":  st.Input.NonOperatingExpenses,
		"pretax_income":           st.PretaxIncome,
		"income_tax":              st.IncomeTax,
		"tax_rate":                st.TaxRatePercent(),
		"net_income":              st.NetIncome,
		"net_profit_margin":       st.NetMarginPercent(),
		"warnings":                st.Warnings,
	}, nil
}

package toolshed

import (
	"context"
	"math"
	"strconv"
	"testing"
)

func invokeFloat(t *testing.T, name string, args map[string]any) float64 {
	t.Helper()
	tool, _, ok := Catalog().Lookup(name)
	if !ok {
		t.Fatalf("tool %s not in catalog", name)
	}
	out, err := tool.Invoke(context.Background(), args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	v, err := strconv.ParseFloat(out, 64)
	if err != nil {
		t.Fatalf("%s returned non-numeric output %q", name, out)
	}
	return v
}

func approx(t *testing.T, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Fatalf("got %f, want %f (±%f)", got, want, tolerance)
	}
}

func TestFutureValue(t *testing.T) {
	got := invokeFloat(t, "get_future_value", map[string]any{
		"present_value":         10000.0,
		"interest_rate":         0.05,
		"periods":               10.0,
		"compounding_frequency": 1.0,
	})
	approx(t, got, 16288.95, 0.01)
}

func TestPresentValue(t *testing.T) {
	got := invokeFloat(t, "get_present_value", map[string]any{
		"future_value":  20000.0,
		"discount_rate": 0.07,
		"periods":       10.0,
	})
	approx(t, got, 10166.99, 0.01)
}

func TestNetPresentValue(t *testing.T) {
	got := invokeFloat(t, "get_net_present_value", map[string]any{
		"cash_flows":    []any{-5000.0, 1200.0, 1200.0, 1200.0, 1200.0, 1200.0, 1200.0, 1200.0},
		"discount_rate": 0.06,
	})
	approx(t, got, 1698.86, 0.5)
}

func TestInternalRateOfReturn(t *testing.T) {
	got := invokeFloat(t, "get_internal_rate_of_return", map[string]any{
		"cash_flows": []any{-5000.0, 1200.0, 1200.0, 1200.0, 1200.0, 1200.0, 1200.0, 1200.0},
	})
	// At the IRR the discounted flows must net to zero.
	flows := []float64{-5000, 1200, 1200, 1200, 1200, 1200, 1200, 1200}
	approx(t, npv(got, flows), 0, 0.01)
}

func TestIRRNoSignChange(t *testing.T) {
	tool, _, _ := Catalog().Lookup("get_internal_rate_of_return")
	if _, err := tool.Invoke(context.Background(), map[string]any{
		"cash_flows": []any{1000.0, 1200.0},
	}); err == nil {
		t.Fatal("expected error for all-positive cash flows")
	}
}

func TestPaybackPeriod(t *testing.T) {
	got := invokeFloat(t, "get_payback_period", map[string]any{
		"initial_investment": -5000.0,
		"cash_flows":         []any{1200.0, 1200.0, 1200.0, 1200.0, 1200.0},
	})
	approx(t, got, 5, 0)

	never := invokeFloat(t, "get_payback_period", map[string]any{
		"initial_investment": -5000.0,
		"cash_flows":         []any{100.0, 100.0},
	})
	if !math.IsInf(never, 1) {
		t.Fatalf("expected +Inf for unrecovered investment, got %f", never)
	}
}

func TestRatioTools(t *testing.T) {
	cases := []struct {
		tool string
		args map[string]any
		want float64
	}{
		{"get_return_on_investment", map[string]any{"gain_from_investment": 1500.0, "cost_of_investment": 1000.0}, 0.5},
		{"get_price_to_earnings_ratio", map[string]any{"market_price_per_share": 50.0, "earnings_per_share": 5.0}, 10},
		{"get_dividend_yield", map[string]any{"annual_dividends_per_share": 2.0, "price_per_share": 40.0}, 0.05},
		{"get_debt_to_equity_ratio", map[string]any{"total_liabilities": 300000.0, "shareholder_equity": 150000.0}, 2},
		{"get_current_ratio", map[string]any{"current_assets": 80000.0, "current_liabilities": 40000.0}, 2},
		{"get_sharpe_ratio", map[string]any{"portfolio_return": 0.12, "risk_free_rate": 0.03, "standard_deviation": 0.18}, 0.5},
	}
	for _, tc := range cases {
		approx(t, invokeFloat(t, tc.tool, tc.args), tc.want, 1e-9)
	}
}

func TestEarningsPerShare(t *testing.T) {
	got := invokeFloat(t, "get_earnings_per_share", map[string]any{
		"net_income":                 1000000.0,
		"preferred_dividends":        100000.0,
		"average_outstanding_shares": 450000.0,
	})
	approx(t, got, 2, 1e-9)
}

func TestCompoundAnnualGrowthRate(t *testing.T) {
	got := invokeFloat(t, "get_compound_annual_growth_rate", map[string]any{
		"beginning_value": 10000.0,
		"ending_value":    20000.0,
		"periods":         10.0,
	})
	approx(t, got, 0.0718, 0.0001)
}

func TestLoanPayment(t *testing.T) {
	got := invokeFloat(t, "get_loan_payment", map[string]any{
		"principal":            200000.0,
		"annual_interest_rate": 0.06,
		"periods":              360.0,
	})
	approx(t, got, 1199.10, 0.01)
}

func TestWACC(t *testing.T) {
	got := invokeFloat(t, "get_weighted_average_cost_of_capital", map[string]any{
		"equity":         600000.0,
		"debt":           400000.0,
		"cost_of_equity": 0.10,
		"cost_of_debt":   0.05,
		"tax_rate":       0.25,
	})
	approx(t, got, 0.075, 1e-9)
}

func TestCatalogContents(t *testing.T) {
	catalog := Catalog()
	specs := catalog.Specs()
	if len(specs) != len(All()) {
		t.Fatalf("catalog has %d specs, want %d", len(specs), len(All()))
	}
	for _, spec := range specs {
		if spec.Description == "" {
			t.Fatalf("tool %s has no description", spec.Name)
		}
		if len(spec.ParamStrings()) == 0 {
			t.Fatalf("tool %s has no parameter strings", spec.Name)
		}
	}
}

func TestMissingArgument(t *testing.T) {
	tool, _, _ := Catalog().Lookup("get_present_value")
	if _, err := tool.Invoke(context.Background(), map[string]any{"future_value": 100.0}); err == nil {
		t.Fatal("expected error for missing arguments")
	}
}

package toolshed

import (
	"fmt"
	"math"

	fusion "github.com/toolshed-ai/toolfusion"
)

// All returns every built-in financial tool in a stable order.
func All() []fusion.Tool {
	return []fusion.Tool{
		futureValue(),
		presentValue(),
		netPresentValue(),
		internalRateOfReturn(),
		paybackPeriod(),
		returnOnInvestment(),
		earningsPerShare(),
		priceToEarningsRatio(),
		dividendYield(),
		compoundAnnualGrowthRate(),
		loanPayment(),
		debtToEquityRatio(),
		currentRatio(),
		weightedAverageCostOfCapital(),
		sharpeRatio(),
	}
}

func futureValue() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_future_value",
			Description: "Calculates the future value of an investment using compound interest. This function helps investors estimate how much their initial investment will grow over a specific period at a given interest rate and compounding frequency. It's useful for planning long-term financial goals and understanding the impact of compound interest on investments.",
			InputSchema: objectSchema(map[string]any{
				"present_value":         numberSchema("Initial amount invested."),
				"interest_rate":         numberSchema("Annual interest rate (as a decimal)."),
				"periods":               numberSchema("Number of periods (years)."),
				"compounding_frequency": numberSchema("Times interest is compounded per period."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			pv, err := floatArg(args, "present_value")
			if err != nil {
				return 0, err
			}
			rate, err := floatArg(args, "interest_rate")
			if err != nil {
				return 0, err
			}
			periods, err := floatArg(args, "periods")
			if err != nil {
				return 0, err
			}
			freq, err := floatArg(args, "compounding_frequency")
			if err != nil {
				return 0, err
			}
			if freq == 0 {
				return 0, fmt.Errorf("compounding_frequency must be positive")
			}
			return pv * math.Pow(1+rate/freq, freq*periods), nil
		},
	}
}

func presentValue() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_present_value",
			Description: "Determines the current worth of a future amount of money by discounting it at a specific rate over a number of periods. This function is essential for assessing the value of future cash flows in today's terms, helping in investment decisions and comparing cash flows occurring at different times.",
			InputSchema: objectSchema(map[string]any{
				"future_value":  numberSchema("Future amount to be received or paid."),
				"discount_rate": numberSchema("Discount rate (as a decimal)."),
				"periods":       numberSchema("Number of periods until payment."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			fv, err := floatArg(args, "future_value")
			if err != nil {
				return 0, err
			}
			rate, err := floatArg(args, "discount_rate")
			if err != nil {
				return 0, err
			}
			periods, err := floatArg(args, "periods")
			if err != nil {
				return 0, err
			}
			return fv / math.Pow(1+rate, periods), nil
		},
	}
}

func netPresentValue() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_net_present_value",
			Description: "Calculates the Net Present Value (NPV) of a series of cash flows by discounting each flow back to the present at a given rate. A positive NPV indicates the projected earnings exceed the anticipated costs, making this function central to capital budgeting and investment appraisal.",
			InputSchema: objectSchema(map[string]any{
				"cash_flows":    arraySchema("Sequence of cash flows starting with the initial investment (negative value)."),
				"discount_rate": numberSchema("Discount rate per period (as a decimal)."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			flows, err := floatsArg(args, "cash_flows")
			if err != nil {
				return 0, err
			}
			rate, err := floatArg(args, "discount_rate")
			if err != nil {
				return 0, err
			}
			return npv(rate, flows), nil
		},
	}
}

func npv(rate float64, flows []float64) float64 {
	var total float64
	for t, cf := range flows {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

func internalRateOfReturn() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_internal_rate_of_return",
			Description: "Computes the Internal Rate of Return (IRR) for a series of cash flows, which is the discount rate that makes the net present value (NPV) of all cash flows equal to zero. This function is useful for evaluating the profitability of potential investments or projects, especially when comparing multiple options with different cash flow patterns.",
			InputSchema: objectSchema(map[string]any{
				"cash_flows": arraySchema("Sequence of cash flows starting with initial investment (negative value)."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			flows, err := floatsArg(args, "cash_flows")
			if err != nil {
				return 0, err
			}
			return irr(flows)
		},
	}
}

// irr finds the rate where NPV crosses zero by bisection over (-1, 10].
func irr(flows []float64) (float64, error) {
	if len(flows) < 2 {
		return 0, fmt.Errorf("need at least two cash flows")
	}
	lo, hi := -0.9999, 10.0
	fLo, fHi := npv(lo, flows), npv(hi, flows)
	if fLo*fHi > 0 {
		return 0, fmt.Errorf("cash flows have no sign change; IRR undefined")
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fMid := npv(mid, flows)
		if math.Abs(fMid) < 1e-9 {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2, nil
}

func paybackPeriod() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_payback_period",
			Description: "Calculates the time required to recover the initial investment from the net cash inflows generated by the project. This function helps assess the liquidity and risk of an investment by indicating how quickly the invested capital can be recouped. It's particularly useful when evaluating projects where cash flow timing is critical.",
			InputSchema: objectSchema(map[string]any{
				"initial_investment": numberSchema("Initial investment amount (negative value)."),
				"cash_flows":         arraySchema("Sequence of net cash inflows."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			initial, err := floatArg(args, "initial_investment")
			if err != nil {
				return 0, err
			}
			flows, err := floatsArg(args, "cash_flows")
			if err != nil {
				return 0, err
			}
			cumulative := initial
			for i, cf := range flows {
				cumulative += cf
				if cumulative >= 0 {
					return float64(i + 1), nil
				}
			}
			return math.Inf(1), nil
		},
	}
}

func returnOnInvestment() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_return_on_investment",
			Description: "Determines the Return on Investment (ROI), which measures the profitability and efficiency of an investment by calculating the percentage return relative to its cost. This function is useful for comparing the efficiency of several investments and making informed financial decisions.",
			InputSchema: objectSchema(map[string]any{
				"gain_from_investment": numberSchema("Total gain from the investment."),
				"cost_of_investment":   numberSchema("Total cost of the investment."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			return ratio(args, "gain_from_investment", "cost_of_investment", func(gain, cost float64) float64 {
				return (gain - cost) / cost
			})
		},
	}
}

func earningsPerShare() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_earnings_per_share",
			Description: "Calculates the Earnings Per Share (EPS), representing the portion of a company's profit allocated to each outstanding share of common stock. This metric is important for investors to assess a company's profitability on a per-share basis and compare it with peers or industry benchmarks.",
			InputSchema: objectSchema(map[string]any{
				"net_income":                 numberSchema("Net income after taxes and preferred dividends."),
				"preferred_dividends":        numberSchema("Dividends paid to preferred shareholders."),
				"average_outstanding_shares": numberSchema("Average number of common shares outstanding."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			income, err := floatArg(args, "net_income")
			if err != nil {
				return 0, err
			}
			preferred, err := floatArg(args, "preferred_dividends")
			if err != nil {
				return 0, err
			}
			shares, err := floatArg(args, "average_outstanding_shares")
			if err != nil {
				return 0, err
			}
			if shares == 0 {
				return 0, fmt.Errorf("average_outstanding_shares must be non-zero")
			}
			return (income - preferred) / shares, nil
		},
	}
}

func priceToEarningsRatio() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_price_to_earnings_ratio",
			Description: "Calculates the Price-to-Earnings (P/E) Ratio, which compares a company's share price to its earnings per share. This ratio helps investors determine the market's valuation of a company's profitability and is useful for comparing valuation levels across companies and industries.",
			InputSchema: objectSchema(map[string]any{
				"market_price_per_share": numberSchema("Current market price per share."),
				"earnings_per_share":     numberSchema("Earnings per share (EPS)."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			return ratio(args, "market_price_per_share", "earnings_per_share", func(price, eps float64) float64 {
				return price / eps
			})
		},
	}
}

func dividendYield() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_dividend_yield",
			Description: "Determines the Dividend Yield, which shows how much a company pays out in dividends each year relative to its stock price. This function is valuable for income-focused investors who are interested in stocks that provide a steady income stream through dividends.",
			InputSchema: objectSchema(map[string]any{
				"annual_dividends_per_share": numberSchema("Total annual dividends per share."),
				"price_per_share":            numberSchema("Current market price per share."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			return ratio(args, "annual_dividends_per_share", "price_per_share", func(dividends, price float64) float64 {
				return dividends / price
			})
		},
	}
}

func compoundAnnualGrowthRate() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_compound_annual_growth_rate",
			Description: "Computes the Compound Annual Growth Rate (CAGR), which represents the mean annual growth rate of an investment over a specified time period longer than one year. This function helps investors understand how different investments have performed over time and is useful for comparing the growth rates of various investments.",
			InputSchema: objectSchema(map[string]any{
				"beginning_value": numberSchema("Initial investment value."),
				"ending_value":    numberSchema("Ending investment value."),
				"periods":         numberSchema("Number of periods (years)."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			begin, err := floatArg(args, "beginning_value")
			if err != nil {
				return 0, err
			}
			end, err := floatArg(args, "ending_value")
			if err != nil {
				return 0, err
			}
			periods, err := floatArg(args, "periods")
			if err != nil {
				return 0, err
			}
			if begin <= 0 || periods <= 0 {
				return 0, fmt.Errorf("beginning_value and periods must be positive")
			}
			return math.Pow(end/begin, 1/periods) - 1, nil
		},
	}
}

func loanPayment() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_loan_payment",
			Description: "Calculates the periodic payment required to amortize a loan over a specified number of periods at a given annual interest rate. This function helps borrowers plan their repayment schedules and understand the financial commitment involved in taking on a loan.",
			InputSchema: objectSchema(map[string]any{
				"principal":            numberSchema("Total loan amount borrowed."),
				"annual_interest_rate": numberSchema("Annual interest rate (as a decimal)."),
				"periods":              numberSchema("Total number of payment periods."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			principal, err := floatArg(args, "principal")
			if err != nil {
				return 0, err
			}
			annualRate, err := floatArg(args, "annual_interest_rate")
			if err != nil {
				return 0, err
			}
			periods, err := floatArg(args, "periods")
			if err != nil {
				return 0, err
			}
			monthlyRate := annualRate / 12
			if monthlyRate == 0 {
				if periods == 0 {
					return 0, fmt.Errorf("periods must be positive")
				}
				return principal / periods, nil
			}
			factor := math.Pow(1+monthlyRate, periods)
			return principal * (monthlyRate * factor) / (factor - 1), nil
		},
	}
}

func debtToEquityRatio() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_debt_to_equity_ratio",
			Description: "Computes the Debt-to-Equity Ratio, which measures a company's financial leverage by comparing its total liabilities to shareholders' equity. This ratio is useful for assessing a company's risk level and financial stability, indicating how much debt is used to finance assets relative to equity.",
			InputSchema: objectSchema(map[string]any{
				"total_liabilities":  numberSchema("Company's total liabilities."),
				"shareholder_equity": numberSchema("Total shareholder's equity."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			return ratio(args, "total_liabilities", "shareholder_equity", func(debt, equity float64) float64 {
				return debt / equity
			})
		},
	}
}

func currentRatio() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_current_ratio",
			Description: "Calculates the Current Ratio, a liquidity ratio that measures a company's ability to pay short-term obligations with its current assets. This function is essential for evaluating a company's short-term financial health and operational efficiency.",
			InputSchema: objectSchema(map[string]any{
				"current_assets":      numberSchema("Company's current assets."),
				"current_liabilities": numberSchema("Company's current liabilities."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			return ratio(args, "current_assets", "current_liabilities", func(assets, liabilities float64) float64 {
				return assets / liabilities
			})
		},
	}
}

func weightedAverageCostOfCapital() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_weighted_average_cost_of_capital",
			Description: "Calculates the Weighted Average Cost of Capital (WACC), representing the average rate a company is expected to pay to finance its assets. WACC is essential for evaluating investment opportunities and serves as a hurdle rate in capital budgeting decisions.",
			InputSchema: objectSchema(map[string]any{
				"equity":         numberSchema("Market value of equity."),
				"debt":           numberSchema("Market value of debt."),
				"cost_of_equity": numberSchema("Cost of equity (as decimal)."),
				"cost_of_debt":   numberSchema("Cost of debt (as decimal)."),
				"tax_rate":       numberSchema("Corporate tax rate (as decimal)."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			equity, err := floatArg(args, "equity")
			if err != nil {
				return 0, err
			}
			debt, err := floatArg(args, "debt")
			if err != nil {
				return 0, err
			}
			costEquity, err := floatArg(args, "cost_of_equity")
			if err != nil {
				return 0, err
			}
			costDebt, err := floatArg(args, "cost_of_debt")
			if err != nil {
				return 0, err
			}
			taxRate, err := floatArg(args, "tax_rate")
			if err != nil {
				return 0, err
			}
			total := equity + debt
			if total == 0 {
				return 0, fmt.Errorf("equity and debt sum to zero")
			}
			return (equity/total)*costEquity + (debt/total)*costDebt*(1-taxRate), nil
		},
	}
}

func sharpeRatio() fusion.Tool {
	return &calcTool{
		spec: fusion.ToolSpec{
			Name:        "get_sharpe_ratio",
			Description: "Calculates the Sharpe Ratio, which evaluates the risk-adjusted return of an investment portfolio by comparing its excess return to its volatility. This function helps investors understand the return of an investment compared to its risk, facilitating better portfolio optimization.",
			InputSchema: objectSchema(map[string]any{
				"portfolio_return":   numberSchema("Average portfolio return (as decimal)."),
				"risk_free_rate":     numberSchema("Risk-free rate (as decimal)."),
				"standard_deviation": numberSchema("Standard deviation of portfolio's excess return."),
			}),
		},
		fn: func(args map[string]any) (float64, error) {
			ret, err := floatArg(args, "portfolio_return")
			if err != nil {
				return 0, err
			}
			riskFree, err := floatArg(args, "risk_free_rate")
			if err != nil {
				return 0, err
			}
			stddev, err := floatArg(args, "standard_deviation")
			if err != nil {
				return 0, err
			}
			if stddev == 0 {
				return 0, fmt.Errorf("standard_deviation must be non-zero")
			}
			return (ret - riskFree) / stddev, nil
		},
	}
}

// ratio extracts two named arguments and applies fn, rejecting a zero
// denominator.
func ratio(args map[string]any, numName, denName string, fn func(num, den float64) float64) (float64, error) {
	num, err := floatArg(args, numName)
	if err != nil {
		return 0, err
	}
	den, err := floatArg(args, denName)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, fmt.Errorf("%s must be non-zero", denName)
	}
	return fn(num, den), nil
}

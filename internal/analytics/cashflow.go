package analytics

import (
	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// MaxProjectionMonths bounds cash-flow projections to ten years.
const MaxProjectionMonths = 120

// basisPointScale converts basis points to a ratio.
const basisPointScale = 10_000

// CashFlowInput drives a monthly cash-flow projection. Money is integer
// cents and rates are basis points so the projection stays deterministic.
type CashFlowInput struct {
	StartingBalanceCents int64 `json:"starting_balance_cents"`
	MonthlyPremiumCents  int64 `json:"monthly_premium_cents"`
	CommissionRateBps    int64 `json:"commission_rate_bps"`
	MonthlyExpensesCents int64 `json:"monthly_expenses_cents"`
	GrowthRateBps        int64 `json:"growth_rate_bps"`
	Months               int   `json:"months"`
}

// CashFlowMonth is one projected month.
type CashFlowMonth struct {
	Month              int   `json:"month"`
	PremiumCents       int64 `json:"premium_cents"`
	CommissionCents    int64 `json:"commission_cents"`
	ExpensesCents      int64 `json:"expenses_cents"`
	NetCents           int64 `json:"net_cents"`
	EndingBalanceCents int64 `json:"ending_balance_cents"`
}

// ProjectCashFlow projects the agency balance month by month. Premium
// volume compounds by the growth rate; commission is earned on that
// month's premium and expenses are flat.
func ProjectCashFlow(input CashFlowInput) ([]CashFlowMonth, error) {
	if input.Months < 1 || input.Months > MaxProjectionMonths {
		return nil, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "months must be between 1 and 120")
	}
	if input.MonthlyPremiumCents < 0 || input.MonthlyExpensesCents < 0 {
		return nil, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "premium and expenses must not be negative")
	}
	if input.CommissionRateBps < 0 || input.CommissionRateBps > basisPointScale {
		return nil, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "commission rate must be between 0 and 10000 basis points")
	}
	if input.GrowthRateBps < -basisPointScale || input.GrowthRateBps > basisPointScale {
		return nil, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "growth rate must be between -10000 and 10000 basis points")
	}

	months := make([]CashFlowMonth, 0, input.Months)
	balance := input.StartingBalanceCents
	premium := input.MonthlyPremiumCents

	for m := 1; m <= input.Months; m++ {
		commission := premium * input.CommissionRateBps / basisPointScale
		net := commission - input.MonthlyExpensesCents
		balance += net
		months = append(months, CashFlowMonth{
			Month:              m,
			PremiumCents:       premium,
			CommissionCents:    commission,
			ExpensesCents:      input.MonthlyExpensesCents,
			NetCents:           net,
			EndingBalanceCents: balance,
		})
		premium += premium * input.GrowthRateBps / basisPointScale
		if premium < 0 {
			premium = 0
		}
	}
	return months, nil
}

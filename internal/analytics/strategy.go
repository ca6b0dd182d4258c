package analytics

import (
	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// StrategyInput captures an agency's sales funnel assumptions.
type StrategyInput struct {
	AnnualIncomeGoalCents       int64 `json:"annual_income_goal_cents"`
	AvgCommissionPerPolicyCents int64 `json:"avg_commission_per_policy_cents"`
	CloseRateBps                int64 `json:"close_rate_bps"`
	ContactToQuoteRateBps       int64 `json:"contact_to_quote_rate_bps"`
}

// StrategyTargets is the activity volume required to hit the income goal,
// working the funnel backwards from policies to quotes to contacts.
type StrategyTargets struct {
	PoliciesPerYear  int64 `json:"policies_per_year"`
	PoliciesPerMonth int64 `json:"policies_per_month"`
	PoliciesPerWeek  int64 `json:"policies_per_week"`
	QuotesPerYear    int64 `json:"quotes_per_year"`
	QuotesPerMonth   int64 `json:"quotes_per_month"`
	QuotesPerWeek    int64 `json:"quotes_per_week"`
	ContactsPerYear  int64 `json:"contacts_per_year"`
	ContactsPerMonth int64 `json:"contacts_per_month"`
	ContactsPerWeek  int64 `json:"contacts_per_week"`
}

// ComputeStrategy derives yearly, monthly, and weekly funnel targets.
// All divisions round up so the targets are always sufficient.
func ComputeStrategy(input StrategyInput) (StrategyTargets, error) {
	if input.AnnualIncomeGoalCents <= 0 {
		return StrategyTargets{}, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "annual income goal must be positive")
	}
	if input.AvgCommissionPerPolicyCents <= 0 {
		return StrategyTargets{}, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "average commission per policy must be positive")
	}
	if input.CloseRateBps <= 0 || input.CloseRateBps > basisPointScale {
		return StrategyTargets{}, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "close rate must be between 1 and 10000 basis points")
	}
	if input.ContactToQuoteRateBps <= 0 || input.ContactToQuoteRateBps > basisPointScale {
		return StrategyTargets{}, apperrors.New(apperrors.CodeAnalyticsInvalidInput, "contact to quote rate must be between 1 and 10000 basis points")
	}

	policies := ceilDiv(input.AnnualIncomeGoalCents, input.AvgCommissionPerPolicyCents)
	quotes := ceilDiv(policies*basisPointScale, input.CloseRateBps)
	contacts := ceilDiv(quotes*basisPointScale, input.ContactToQuoteRateBps)

	return StrategyTargets{
		PoliciesPerYear:  policies,
		PoliciesPerMonth: ceilDiv(policies, 12),
		PoliciesPerWeek:  ceilDiv(policies, 52),
		QuotesPerYear:    quotes,
		QuotesPerMonth:   ceilDiv(quotes, 12),
		QuotesPerWeek:    ceilDiv(quotes, 52),
		ContactsPerYear:  contacts,
		ContactsPerMonth: ceilDiv(contacts, 12),
		ContactsPerWeek:  ceilDiv(contacts, 52),
	}, nil
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

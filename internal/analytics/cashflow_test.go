package analytics

import (
	"testing"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

func TestProjectCashFlow(t *testing.T) {
	months, err := ProjectCashFlow(CashFlowInput{
		StartingBalanceCents: 100_000,
		MonthlyPremiumCents:  1_000_000,
		CommissionRateBps:    1_000, // 10%
		MonthlyExpensesCents: 50_000,
		GrowthRateBps:        500, // 5% monthly growth
		Months:               2,
	})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("months = %d", len(months))
	}

	first := months[0]
	if first.CommissionCents != 100_000 {
		t.Fatalf("month 1 commission = %d", first.CommissionCents)
	}
	if first.NetCents != 50_000 || first.EndingBalanceCents != 150_000 {
		t.Fatalf("month 1 = %+v", first)
	}

	second := months[1]
	if second.PremiumCents != 1_050_000 {
		t.Fatalf("month 2 premium = %d", second.PremiumCents)
	}
	if second.CommissionCents != 105_000 {
		t.Fatalf("month 2 commission = %d", second.CommissionCents)
	}
	if second.EndingBalanceCents != 205_000 {
		t.Fatalf("month 2 balance = %d", second.EndingBalanceCents)
	}
}

func TestProjectCashFlowNegativeGrowthFloorsAtZero(t *testing.T) {
	months, err := ProjectCashFlow(CashFlowInput{
		MonthlyPremiumCents: 100,
		CommissionRateBps:   10_000,
		GrowthRateBps:       -10_000,
		Months:              3,
	})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if months[1].PremiumCents != 0 || months[2].PremiumCents != 0 {
		t.Fatalf("premium did not floor at zero: %+v", months)
	}
}

func TestProjectCashFlowValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CashFlowInput
	}{
		{"zero months", CashFlowInput{Months: 0}},
		{"too many months", CashFlowInput{Months: MaxProjectionMonths + 1}},
		{"negative premium", CashFlowInput{Months: 1, MonthlyPremiumCents: -1}},
		{"negative expenses", CashFlowInput{Months: 1, MonthlyExpensesCents: -1}},
		{"commission over 100%", CashFlowInput{Months: 1, CommissionRateBps: 10_001}},
		{"growth under -100%", CashFlowInput{Months: 1, GrowthRateBps: -10_001}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ProjectCashFlow(test.input)
			if apperrors.CodeOf(err) != apperrors.CodeAnalyticsInvalidInput {
				t.Fatalf("expected invalid input error, got %v", err)
			}
		})
	}
}

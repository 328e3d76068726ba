package pricing

import (
	"testing"

	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

func TestCalculateReferenceTotals(t *testing.T) {
	tests := []struct {
		tier  enums.PlanTier
		price string
		base  string
		tax   string
		total string
		free  string
	}{
		{tier: enums.PlanTierDaily, price: "99", base: "198", tax: "9.9", total: "207.9", free: "0"},
		{tier: enums.PlanTierWeekly, price: "79", base: "948", tax: "47.4", total: "995.4", free: "158"},
		{tier: enums.PlanTierMonthly, price: "79", base: "4108", tax: "205.4", total: "4313.4", free: "632"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got, err := Calculate(tt.tier, dec(t, tt.price))
			require.NoError(t, err)
			assert.True(t, got.BasePrice.Equal(dec(t, tt.base)), "base %s", got.BasePrice)
			assert.True(t, got.Tax.Equal(dec(t, tt.tax)), "tax %s", got.Tax)
			assert.True(t, got.Total.Equal(dec(t, tt.total)), "total %s", got.Total)
			assert.True(t, got.FreeDaysValue.Equal(dec(t, tt.free)), "free %s", got.FreeDaysValue)
		})
	}
}

func TestFreeDaysNeverSubtracted(t *testing.T) {
	got, err := Calculate(enums.PlanTierMonthly, decimal.NewFromInt(59))
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(got.BasePrice.Add(got.Tax)))
	assert.True(t, got.BasePrice.Equal(decimal.NewFromInt(59*2*26)))
}

func TestCalculateKeepsFullPrecision(t *testing.T) {
	got, err := Calculate(enums.PlanTierWeekly, dec(t, "66.67"))
	require.NoError(t, err)
	// 66.67 × 12 = 800.04, × 0.05 = 40.002
	assert.Equal(t, "40.002", got.Tax.String())
	assert.Equal(t, "840.042", got.Total.String())
	assert.Equal(t, "840.04", got.Total.StringFixed(2))
}

func TestCalculateUnknownPlan(t *testing.T) {
	_, err := Calculate("yearly", decimal.NewFromInt(79))
	require.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCustomGSTRate(t *testing.T) {
	calc := NewCalculator(dec(t, "0.12"))
	got, err := calc.Calculate(enums.PlanTierDaily, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, got.Tax.Equal(decimal.NewFromInt(24)))
	assert.True(t, calc.GSTRate().Equal(dec(t, "0.12")))
}

func TestDetails(t *testing.T) {
	d, err := NewCalculator(DefaultGSTRate).Details(enums.PlanTierWeekly, decimal.NewFromInt(69))
	require.NoError(t, err)
	assert.Equal(t, MealsPerDay, d.MealsPerDay)
	assert.Equal(t, 6, d.BillableDays)
	assert.Equal(t, 1, d.FreeDays)
	assert.Equal(t, 7, d.DurationDays)
	assert.Equal(t, d.BillableDays+d.FreeDays, d.DurationDays)
}

func TestSchedulesCoverEveryTier(t *testing.T) {
	for _, tier := range enums.PlanTiers() {
		s, err := ScheduleFor(tier)
		require.NoError(t, err, tier)
		assert.Equal(t, s.DurationDays, s.BillableDays+s.FreeDays, tier)
	}
}

func TestPresetsAreCopies(t *testing.T) {
	first := Presets()
	require.Len(t, first, 3)
	first[0].Features[0] = "mutated"
	assert.NotEqual(t, "mutated", Presets()[0].Features[0])
	assert.True(t, Presets()[1].PricePerMeal.Equal(decimal.NewFromInt(69)))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btl-quote/domain"
)

func residentialLimits() domain.LoanLimits {
	return domain.LoanLimits{
		MinLoan:            150000,
		MaxLoan:            3000000,
		StandardBBR:        0.04,
		StressBBR:          0.0425,
		MaxRolledMonths:    9,
		MaxDeferredFix:     0.0125,
		MaxDeferredTracker: 0.02,
		MinICRFix:          1.25,
		MinICRTracker:      1.30,
		TotalTermYears:     10,
	}
}

func fixContext(pv, rent float64) PricingContext {
	return PricingContext{
		ProductName: "2yr Fix, Tier 1",
		Product: domain.ProductRates{
			Name:       "2yr Fix",
			TermMonths: 24,
			Rates:      map[string]float64{"6": 0.0589, "4": 0.0639, "2": 0.0719},
		},
		Limits: residentialLimits(),
		MaxLTV: 0.75,
		Loan: domain.LoanRequest{
			PropertyValue: domain.NewAmount(pv),
			MonthlyRent:   domain.NewAmount(rent),
			Mode:          domain.ModeMaxOptimumGross,
		},
		ProcFeePct: 1,
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestOptimizeColumn_LTVBound(t *testing.T) {
	pc := fixContext(1000000, 6000)

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	assert.InDelta(t, 750000, res.Gross, 1e-6)
	assert.InDelta(t, 705000, res.Net, 1e-6)
	assert.Equal(t, 0, res.RolledMonths)
	assert.Zero(t, res.DeferredRate)
	assert.Equal(t, "5.89%", res.FullRateText)
	assert.Equal(t, "5.89%", res.PayRateText)
	assert.InDelta(t, 7500, res.ProcFee, 1e-6)
	assert.Equal(t, 1, res.DDStartMonth)
	assert.False(t, res.BelowMin)
	assert.False(t, res.Manual)
	require.NotNil(t, res.LTV)
	assert.InDelta(t, 0.75, *res.LTV, 1e-12)
}

func TestOptimizeColumn_MaxLTVLoan(t *testing.T) {
	pc := fixContext(1000000, 6000)
	pc.MaxLTV = 0.8
	pc.Loan.Mode = domain.ModeMaxLTVLoan

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)
	assert.InDelta(t, 750000, res.Gross, 1e-6, "absent target falls back to the default LTV")

	pc.Loan.SpecificLTV = domain.ParseAmount("75%")
	res = OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)
	assert.InDelta(t, 750000, res.Gross, 1e-6, "unparseable target falls back to the default LTV")

	pc.Loan.SpecificLTV = domain.NewAmount(0.6)
	res = OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)
	assert.InDelta(t, 600000, res.Gross, 1e-6)
}

func TestOptimizeColumn_AllInfeasibleFallsBackToFirstCombination(t *testing.T) {
	pc := fixContext(1000000, 200)

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	assert.Zero(t, res.Gross)
	assert.Zero(t, res.Net)
	assert.Equal(t, 0, res.RolledMonths)
	assert.Zero(t, res.DeferredRate)
	assert.True(t, res.BelowMin)
}

func TestOptimizeColumn_SpecificNetLoan(t *testing.T) {
	pc := fixContext(500000, 3000)
	pc.Loan.Mode = domain.ModeSpecificNetLoan
	pc.Loan.SpecificNetLoan = domain.NewAmount(200000)

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	assert.InDelta(t, 200000, res.Net, 0.01)
	assert.LessOrEqual(t, res.Gross, 375000.0)
}

func TestOptimizeColumn_DominatesGrid(t *testing.T) {
	pc := fixContext(1000000, 3000)
	col := domain.NewFeeColumn(4)

	res := OptimizeColumn(col, pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	display, stress := pc.columnRates(0.0639)
	ctx := pc.evalContext(0.04, display, stress)
	steps := 125
	for r := 0; r <= 9; r++ {
		for j := 0; j <= steps; j++ {
			e := Evaluate(r, float64(j)*DeferredStep, ctx)
			assert.LessOrEqual(t, e.Net, res.Net+1e-9, "rolled=%d deferred step=%d", r, j)
		}
	}
	// Rent binds here, so rolling or deferring must pay off.
	assert.True(t, res.RolledMonths > 0 || res.DeferredRate > 0)
	assert.LessOrEqual(t, res.Net, res.Gross)
	assert.LessOrEqual(t, res.Gross, 750000.0)
}

func TestOptimizeColumn_FixedIsClamped(t *testing.T) {
	pc := fixContext(1000000, 3000)
	col := domain.NewFeeColumn(4)

	over := OptimizeColumn(col, pc, domain.ColumnOverride{
		RolledMonths: intPtr(14),
		DeferredRate: floatPtr(0.0625),
	})
	atMax := OptimizeColumn(col, pc, domain.ColumnOverride{
		RolledMonths: intPtr(9),
		DeferredRate: floatPtr(0.0125),
	})
	require.NotNil(t, over)
	require.NotNil(t, atMax)

	assert.Equal(t, 9, over.RolledMonths)
	assert.Equal(t, 0.0125, over.DeferredRate)
	assert.Equal(t, atMax.Net, over.Net)
	assert.True(t, over.Manual)
}

func TestOptimizeColumn_FixedNegativeClampsToZero(t *testing.T) {
	pc := fixContext(1000000, 3000)

	res := OptimizeColumn(domain.NewFeeColumn(4), pc, domain.ColumnOverride{
		RolledMonths: intPtr(-2),
		DeferredRate: floatPtr(-0.01),
	})
	require.NotNil(t, res)

	assert.Equal(t, 0, res.RolledMonths)
	assert.Zero(t, res.DeferredRate)
}

func TestOptimizeColumn_MissingRate(t *testing.T) {
	pc := fixContext(1000000, 6000)

	assert.Nil(t, OptimizeColumn(domain.NewFeeColumn(3), pc, domain.ColumnOverride{}))

	res := OptimizeColumn(domain.NewFeeColumn(3), pc, domain.ColumnOverride{Rate: floatPtr(0.07)})
	require.NotNil(t, res)
	assert.True(t, res.RateOverridden)
	assert.Equal(t, 0.07, res.ActualRateUsed)
}

func TestOptimizeColumn_FeeOverride(t *testing.T) {
	pc := fixContext(1000000, 6000)

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{FeePct: floatPtr(5)})
	require.NotNil(t, res)

	assert.InDelta(t, 5, res.FeePct, 1e-9)
	assert.InDelta(t, 37500, res.Fee, 1e-6)
}

func TestOptimizeColumn_Tracker(t *testing.T) {
	pc := fixContext(1000000, 6000)
	pc.Product = domain.ProductRates{
		Name:       "2yr Tracker",
		TermMonths: 24,
		IsTracker:  true,
		Rates:      map[string]float64{"6": 0.0159},
	}

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	assert.Equal(t, 0.0159, res.ActualRateUsed)
	assert.Equal(t, "1.59% + BBR", res.FullRateText)
	assert.LessOrEqual(t, res.DeferredRate, 0.02)
}

func TestOptimizeColumn_CoreNeverAdjusts(t *testing.T) {
	pc := fixContext(1000000, 3000)
	pc.Core = true
	pc.CoreFloorRate = 0.055
	pc.Product.Rates = map[string]float64{"6": 0.0519}

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{
		RolledMonths: intPtr(6),
		DeferredRate: floatPtr(0.01),
	})
	require.NotNil(t, res)

	assert.Equal(t, 0, res.RolledMonths)
	assert.Zero(t, res.DeferredRate)
	assert.Equal(t, 0.055, res.ActualRateUsed)
	assert.False(t, res.Manual)
}

func TestOptimizeColumn_HitMaxCap(t *testing.T) {
	pc := fixContext(10000000, 100000)

	res := OptimizeColumn(domain.NewFeeColumn(6), pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	assert.InDelta(t, 3000000, res.Gross, 1e-6)
	assert.True(t, res.HitMaxCap)
}

func TestOptimizeColumn_RolledMonthsBoundedByTerm(t *testing.T) {
	pc := fixContext(1000000, 3000)
	pc.Product.TermMonths = 6

	res := OptimizeColumn(domain.NewFeeColumn(4), pc, domain.ColumnOverride{})
	require.NotNil(t, res)

	assert.LessOrEqual(t, res.RolledMonths, 6)
	assert.Equal(t, 6, res.TermMonths)
}

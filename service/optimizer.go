package service

import (
	"math"

	"btl-quote/domain"
)

// PricingContext is the resolved, immutable context shared by every fee
// column of one quote.
type PricingContext struct {
	ProductName   string
	Product       domain.ProductRates
	Limits        domain.LoanLimits
	MaxLTV        float64
	Core          bool
	CoreFloorRate float64
	Loan          domain.LoanRequest

	// Fee inputs in percent (1 means 1%).
	ProcFeePct    float64
	BrokerFeePct  float64
	BrokerFeeFlat float64
}

// columnRates resolves display and stress rates from a base rate. Tracker
// bases are margins over the standard and stress BBR; Core products are
// floored after BBR is added.
func (pc PricingContext) columnRates(base float64) (display, stress float64) {
	display, stress = base, base
	if pc.Product.IsTracker {
		display = base + pc.Limits.StandardBBR
		stress = base + pc.Limits.StressBBR
	}
	if pc.Core {
		display = math.Max(display, pc.CoreFloorRate)
		stress = math.Max(stress, pc.CoreFloorRate)
	}
	return display, stress
}

// ltvCap is the gross ceiling from the LTV rule, the borrower's LTV target
// and the borrower's gross target.
func (pc PricingContext) ltvCap() float64 {
	ltvCap := math.Inf(1)
	pv, hasPV := pc.Loan.PropertyValue.Positive()
	if hasPV {
		ltvCap = math.Round(pc.MaxLTV * pv)
	}

	switch pc.Loan.Mode {
	case domain.ModeMaxLTVLoan:
		if hasPV {
			target, ok := pc.Loan.SpecificLTV.Positive()
			if !ok {
				target = DefaultSpecificLTV
			}
			ltvCap = math.Min(ltvCap, pv*target)
		}
	case domain.ModeSpecificGrossLoan:
		if sg, ok := pc.Loan.SpecificGrossLoan.Positive(); ok {
			ltvCap = math.Min(ltvCap, sg)
		}
	}
	return ltvCap
}

func (pc PricingContext) feePct(col domain.FeeColumn, ov domain.ColumnOverride) float64 {
	if ov.FeePct != nil {
		return *ov.FeePct / 100
	}
	return col.Percent / 100
}

func (pc PricingContext) evalContext(feePct, display, stress float64) EvalContext {
	ctx := EvalContext{
		TermMonths:    pc.Product.TermMonths,
		LTVCap:        pc.ltvCap(),
		FeePct:        feePct,
		MinICR:        pc.Limits.MinICR(pc.Product.IsTracker),
		DisplayRate:   display,
		StressRate:    stress,
		MinLoan:       pc.Limits.MinLoan,
		MaxLoan:       pc.Limits.MaxLoan,
		Mode:          pc.Loan.Mode,
		ProcFeePct:    pc.ProcFeePct / 100,
		BrokerFeePct:  pc.BrokerFeePct / 100,
		BrokerFeeFlat: pc.BrokerFeeFlat,
	}
	if ctx.TermMonths <= 0 {
		ctx.TermMonths = DefaultTermMonths
	}
	ctx.PropertyValue, _ = pc.Loan.PropertyValue.Positive()
	ctx.MonthlyRent, _ = pc.Loan.MonthlyRent.Positive()
	if pc.Loan.SpecificNetLoan.Valid {
		ctx.SpecificNet = pc.Loan.SpecificNetLoan.Value
		ctx.HasSpecificNet = true
	}
	ctx.SpecificGross, _ = pc.Loan.SpecificGrossLoan.Positive()
	return ctx
}

// OptimizeColumn prices one fee column. It returns nil when the column has
// no catalog rate and no rate override. It never fails: infeasible cases
// come back as a zero loan with BelowMin set.
func OptimizeColumn(col domain.FeeColumn, pc PricingContext, ov domain.ColumnOverride) *domain.ColumnResult {
	base, ok := pc.Product.Rate(col.Key)
	if ov.Rate != nil {
		base, ok = *ov.Rate, true
	}
	if !ok {
		return nil
	}

	display, stress := pc.columnRates(base)
	ctx := pc.evalContext(pc.feePct(col, ov), display, stress)
	maxDeferred := pc.Limits.MaxDeferred(pc.Product.IsTracker)

	adj := ov.Adjustment()
	if pc.Core {
		// Core products neither roll nor defer.
		adj = domain.Fixed{}
	}

	var best Evaluation
	switch a := adj.(type) {
	case domain.Fixed:
		best = evaluateFixed(a, ctx, pc.Limits.MaxRolledMonths, maxDeferred)
	default:
		maxRolled := min(pc.Limits.MaxRolledMonths, ctx.TermMonths)
		best = searchGrid(ctx, maxRolled, maxDeferred)
	}

	_, manual := ov.Adjustment().(domain.Fixed)
	res := &domain.ColumnResult{
		ColumnKey:      col.Key,
		ProductName:    pc.ProductName,
		ActualRateUsed: display,
		RateOverridden: ov.Rate != nil,
		FeePct:         ctx.FeePct * 100,
		Gross:          best.Gross,
		Net:            best.Net,
		Fee:            best.Fee,
		Rolled:         best.Rolled,
		Deferred:       best.Deferred,
		LTV:            best.LTV,
		RolledMonths:   best.RolledMonths,
		DeferredRate:   best.DeferredRate,
		PayRate:        best.PayRate,
		DirectDebit:    best.Gross * (best.PayRate / 12),
		DDStartMonth:   best.RolledMonths + 1,
		MaxLTVRule:     pc.MaxLTV,
		TermMonths:     ctx.TermMonths,
		BelowMin:       best.Eligible > 0 && best.Eligible < pc.Limits.MinLoan-loanEpsilon,
		HitMaxCap:      math.Abs(best.Gross-pc.Limits.MaxLoan) < loanEpsilon,
		Manual:         manual && !pc.Core,
		ProcFee:        best.ProcFee,
		BrokerFee:      best.BrokerFee,
	}
	if pc.Product.IsTracker {
		res.ActualRateUsed = base
		res.FullRateText = FormatPercent(base) + " + BBR"
	} else {
		res.FullRateText = FormatPercent(display)
	}
	res.PayRateText = FormatPercent(best.PayRate)
	if ctx.PropertyValue > 0 {
		netLTV := best.Net / ctx.PropertyValue
		res.NetLTV = &netLTV
	}
	return res
}

// evaluateFixed evaluates a caller-pinned combination, clamped into range.
// A non-finite or failed evaluation falls back to no roll and no deferral.
func evaluateFixed(f domain.Fixed, ctx EvalContext, maxRolled int, maxDeferred float64) (e Evaluation) {
	rolled := max(0, min(f.RolledMonths, maxRolled))
	deferred := f.DeferredRate
	if math.IsNaN(deferred) || math.IsInf(deferred, 0) {
		deferred = 0
	}
	deferred = math.Max(0, math.Min(deferred, maxDeferred))

	defer func() {
		if r := recover(); r != nil {
			e = Evaluate(0, 0, ctx)
		}
	}()

	e = Evaluate(rolled, deferred, ctx)
	if math.IsNaN(e.Gross) || math.IsInf(e.Gross, 0) {
		e = Evaluate(0, 0, ctx)
	}
	return e
}

// searchGrid evaluates every rolled month (outer, ascending) against every
// deferred rate step (inner, ascending) and keeps the strictly greatest net.
// The first combination reaching a given net wins ties.
func searchGrid(ctx EvalContext, maxRolled int, maxDeferred float64) Evaluation {
	steps := int(math.Round(maxDeferred / DeferredStep))

	var best Evaluation
	found := false
	for r := 0; r <= maxRolled; r++ {
		for j := 0; j <= steps; j++ {
			e := Evaluate(r, float64(j)*DeferredStep, ctx)
			if !found || e.Net > best.Net {
				best, found = e, true
			}
		}
	}
	return best
}

package service

import (
	"math"

	"btl-quote/domain"
)

// EvalContext holds everything a single rolled/deferred trial depends on.
// Absent inputs are zero; an unconstrained LTVCap is +Inf.
type EvalContext struct {
	PropertyValue float64
	MonthlyRent   float64
	TermMonths    int
	LTVCap        float64
	FeePct        float64 // decimal, 0.06 for a 6% fee
	MinICR        float64
	DisplayRate   float64
	StressRate    float64
	MinLoan       float64
	MaxLoan       float64

	Mode           domain.LoanMode
	SpecificNet    float64
	HasSpecificNet bool
	SpecificGross  float64

	ProcFeePct    float64 // decimal
	BrokerFeePct  float64 // decimal
	BrokerFeeFlat float64
}

// Evaluation is the outcome of one rolled/deferred combination.
type Evaluation struct {
	RolledMonths int
	DeferredRate float64
	PayRate      float64

	// Eligible is the gross before loans under the minimum are zeroed.
	Eligible float64
	Gross    float64
	Net      float64
	Fee      float64
	Rolled   float64
	Deferred float64
	LTV      *float64

	ProcFee   float64
	BrokerFee float64
}

// Evaluate computes the eligible gross loan and its deductions for rolling
// rolledMonths of interest and deferring deferredRate of the pay rate.
func Evaluate(rolledMonths int, deferredRate float64, ctx EvalContext) Evaluation {
	term := float64(ctx.TermMonths)
	rolled := float64(rolledMonths)
	monthsLeft := math.Max(term-rolled, 1)
	stressAdj := math.Max(ctx.StressRate-deferredRate, stressFloor)
	payRate := math.Max(ctx.DisplayRate-deferredRate, 0)

	rentCap := math.Inf(1)
	if ctx.MonthlyRent > 0 {
		annualRent := ctx.MonthlyRent * term
		rentCap = annualRent / (ctx.MinICR * (stressAdj / 12) * monthsLeft)
	}

	grossFromNet := math.Inf(1)
	if ctx.Mode == domain.ModeSpecificNetLoan && ctx.HasSpecificNet && ctx.FeePct < 1 {
		denom := 1 - ctx.FeePct - (payRate/12)*rolled - (deferredRate/12)*term
		if denom > denominatorFloor {
			grossFromNet = ctx.SpecificNet / denom
		}
	}

	gross := math.Min(math.Min(ctx.LTVCap, rentCap), ctx.MaxLoan)
	switch ctx.Mode {
	case domain.ModeSpecificNetLoan:
		gross = math.Min(gross, grossFromNet)
	case domain.ModeSpecificGrossLoan:
		if ctx.SpecificGross > 0 {
			gross = math.Min(gross, ctx.SpecificGross)
		}
	}

	e := Evaluation{
		RolledMonths: rolledMonths,
		DeferredRate: deferredRate,
		PayRate:      payRate,
		Eligible:     gross,
	}
	if gross < ctx.MinLoan-loanEpsilon {
		gross = 0
	}

	e.Gross = gross
	e.Fee = gross * ctx.FeePct
	e.Rolled = gross * (payRate / 12) * rolled
	e.Deferred = gross * (deferredRate / 12) * term
	e.Net = gross - e.Fee - e.Rolled - e.Deferred
	if ctx.PropertyValue > 0 {
		ltv := gross / ctx.PropertyValue
		e.LTV = &ltv
	}

	e.ProcFee = gross * ctx.ProcFeePct
	if ctx.BrokerFeeFlat > 0 {
		e.BrokerFee = ctx.BrokerFeeFlat
	} else {
		e.BrokerFee = gross * ctx.BrokerFeePct
	}
	return e
}

package service

import (
	"math"

	"btl-quote/domain"
)

// CanQuote reports whether the loan request carries the minimum data needed
// to price any column: rent, property value and the target of its mode.
func CanQuote(loan domain.LoanRequest) bool {
	if _, ok := loan.MonthlyRent.Positive(); !ok {
		return false
	}
	if _, ok := loan.PropertyValue.Positive(); !ok {
		return false
	}
	switch loan.Mode {
	case domain.ModeSpecificNetLoan:
		_, ok := loan.SpecificNetLoan.Positive()
		return ok
	case domain.ModeSpecificGrossLoan:
		_, ok := loan.SpecificGrossLoan.Positive()
		return ok
	}
	return true
}

// Summarize picks the column with the greatest net. Earlier columns win ties.
func Summarize(results []domain.ColumnResult, propertyValue float64) *domain.BestSummary {
	var best *domain.ColumnResult
	for i := range results {
		if best == nil || results[i].Net > best.Net {
			best = &results[i]
		}
	}
	if best == nil {
		return nil
	}
	return &domain.BestSummary{
		ColumnKey:   best.ColumnKey,
		Gross:       best.Gross,
		GrossText:   FormatMoney(best.Gross),
		GrossLTVPct: ltvPercent(best.Gross, propertyValue),
		Net:         best.Net,
		NetText:     FormatMoney(best.Net),
		NetLTVPct:   ltvPercent(best.Net, propertyValue),
	}
}

// BasicGross is the comparison figure of a column with nothing rolled or
// deferred and no minimum-loan cut-off. Only catalog rates are used.
func BasicGross(col domain.FeeColumn, pc PricingContext, ov domain.ColumnOverride) *domain.BasicGross {
	base, ok := pc.Product.Rate(col.Key)
	if !ok {
		return nil
	}
	display, stress := pc.columnRates(base)
	ctx := pc.evalContext(pc.feePct(col, ov), display, stress)

	gross := Evaluate(0, 0, ctx).Eligible
	res := &domain.BasicGross{
		ColumnKey: col.Key,
		Gross:     gross,
		ProcFee:   gross * ctx.ProcFeePct,
		BrokerFee: gross * ctx.BrokerFeePct,
	}
	if ctx.BrokerFeeFlat > 0 {
		res.BrokerFee = ctx.BrokerFeeFlat
	}
	if ctx.PropertyValue > 0 {
		pct := ltvPercent(gross, ctx.PropertyValue)
		res.LTVPct = &pct
	}
	return res
}

func ltvPercent(amount, propertyValue float64) int {
	if propertyValue <= 0 {
		return 0
	}
	return int(math.Round(amount / propertyValue * 100))
}

package service

import (
	"math"

	"btl-quote/domain"
)

// LTVQuery is the case context the maximum LTV depends on.
type LTVQuery struct {
	Tier                domain.Tier
	Category            domain.PropertyCategory
	Retention           bool
	RetentionBand       string
	FlatAboveCommercial bool
}

// ResolveMaxLTV returns the most restrictive of the category default, the
// retention band override and the flat-above-commercial tier override, as a
// ratio. Missing overrides contribute nothing.
func ResolveMaxLTV(rules domain.LTVRules, q LTVQuery) float64 {
	maxLTV := DefaultMaxLTV * 100
	if def, ok := rules.Default[q.Category]; ok {
		maxLTV = def
	}
	if q.Retention {
		if ov, ok := rules.Retention[q.Category][q.RetentionBand]; ok {
			maxLTV = math.Min(maxLTV, ov)
		}
	}
	if q.FlatAboveCommercial && q.Category == domain.Residential {
		if ov, ok := rules.FlatAboveCommOverrides[q.Tier.Label()]; ok {
			maxLTV = math.Min(maxLTV, ov)
		}
	}
	return maxLTV / 100
}

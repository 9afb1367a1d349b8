package domain

import "strconv"

type PropertyCategory string

const (
	Residential    PropertyCategory = "Residential"
	Commercial     PropertyCategory = "Commercial"
	SemiCommercial PropertyCategory = "Semi-Commercial"
)

type ProductGroup string

const (
	Specialist ProductGroup = "Specialist"
	Core       ProductGroup = "Core"
)

// FeeColumn is a product variant identified by its arrangement fee percentage.
type FeeColumn struct {
	Key     string  `json:"key"`
	Percent float64 `json:"percent"`
}

// NewFeeColumn builds a column from its percentage, e.g. 5.5 -> "5.5".
func NewFeeColumn(pct float64) FeeColumn {
	return FeeColumn{Key: strconv.FormatFloat(pct, 'f', -1, 64), Percent: pct}
}

// ProductRates is the rate entry of one product for one tier, keyed by fee column.
type ProductRates struct {
	Name       string
	TermMonths int
	IsTracker  bool
	ERC        string
	Rates      map[string]float64
}

// Rate returns the base rate of a fee column. For trackers it is a margin over BBR.
func (p ProductRates) Rate(colKey string) (float64, bool) {
	r, ok := p.Rates[colKey]
	return r, ok
}

// LoanLimits are the per-category constraints of the engine.
type LoanLimits struct {
	MinLoan            float64 `json:"minLoan" yaml:"minLoan"`
	MaxLoan            float64 `json:"maxLoan" yaml:"maxLoan"`
	StandardBBR        float64 `json:"standardBBR" yaml:"standardBBR"`
	StressBBR          float64 `json:"stressBBR" yaml:"stressBBR"`
	MaxRolledMonths    int     `json:"maxRolledMonths" yaml:"maxRolledMonths"`
	MaxDeferredFix     float64 `json:"maxDeferredFix" yaml:"maxDeferredFix"`
	MaxDeferredTracker float64 `json:"maxDeferredTracker" yaml:"maxDeferredTracker"`
	MinICRFix          float64 `json:"minICRFix" yaml:"minICRFix"`
	MinICRTracker      float64 `json:"minICRTracker" yaml:"minICRTracker"`
	TotalTermYears     int     `json:"totalTermYears" yaml:"totalTermYears"`
	CurrentMVR         float64 `json:"currentMVR" yaml:"currentMVR"`
}

func (l LoanLimits) MaxDeferred(isTracker bool) float64 {
	if isTracker {
		return l.MaxDeferredTracker
	}
	return l.MaxDeferredFix
}

func (l LoanLimits) MinICR(isTracker bool) float64 {
	if isTracker {
		return l.MinICRTracker
	}
	return l.MinICRFix
}

// LTVRules hold maximum LTV percentages (75 means 75%).
type LTVRules struct {
	Default                map[PropertyCategory]float64            `yaml:"default"`
	Retention              map[PropertyCategory]map[string]float64 `yaml:"retention"`
	FlatAboveCommOverrides map[string]float64                      `yaml:"flatAboveCommOverrides"`
}

package domain

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Amount is a numeric form input. Anything that does not parse to a finite
// number is treated as absent rather than rejected.
type Amount struct {
	Value float64
	Valid bool
}

func NewAmount(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{}
	}
	return Amount{Value: v, Valid: true}
}

// ParseAmount accepts "1,000,000", "£250000" and plain numbers.
func ParseAmount(s string) Amount {
	cleaned := strings.NewReplacer(",", "", "£", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return Amount{}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Amount{}
	}
	return NewAmount(v)
}

// Positive returns the value when it is present and greater than zero.
func (a Amount) Positive() (float64, bool) {
	if a.Valid && a.Value > 0 {
		return a.Value, true
	}
	return 0, false
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = ParseAmount(string(data))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(a.Value, 'f', -1, 64)), nil
}

type LoanMode string

const (
	ModeMaxOptimumGross   LoanMode = "max_optimum_gross"
	ModeSpecificNetLoan   LoanMode = "specific_net_loan"
	ModeMaxLTVLoan        LoanMode = "max_ltv_loan"
	ModeSpecificGrossLoan LoanMode = "specific_gross_loan"
)

func (m LoanMode) Valid() bool {
	switch m {
	case ModeMaxOptimumGross, ModeSpecificNetLoan, ModeMaxLTVLoan, ModeSpecificGrossLoan:
		return true
	}
	return false
}

type LoanRequest struct {
	PropertyValue     Amount   `json:"propertyValue"`
	MonthlyRent       Amount   `json:"monthlyRent"`
	Mode              LoanMode `json:"loanTypeRequired"`
	SpecificNetLoan   Amount   `json:"specificNetLoan"`
	SpecificGrossLoan Amount   `json:"specificGrossLoan"`
	// SpecificLTV is a ratio, 0.75 for 75%. Only read in ModeMaxLTVLoan.
	SpecificLTV Amount `json:"specificLTV"`
}

// Adjustment selects how the rolled/deferred pair of a column is chosen:
// Optimize searches the whole grid, Fixed evaluates one caller-chosen pair.
type Adjustment interface {
	isAdjustment()
}

type Optimize struct{}

type Fixed struct {
	RolledMonths int
	DeferredRate float64
}

func (Optimize) isAdjustment() {}
func (Fixed) isAdjustment()    {}

// ColumnOverride carries manual edits of one fee column.
type ColumnOverride struct {
	Rate         *float64 `json:"rate,omitempty"`
	FeePct       *float64 `json:"feePct,omitempty"`
	RolledMonths *int     `json:"rolledMonths,omitempty"`
	DeferredRate *float64 `json:"deferredRate,omitempty"`
}

// Adjustment turns the manual rolled/deferred fields into an Adjustment.
// Setting either half pins the column; the missing half is 0.
func (o ColumnOverride) Adjustment() Adjustment {
	if o.RolledMonths == nil && o.DeferredRate == nil {
		return Optimize{}
	}
	var f Fixed
	if o.RolledMonths != nil {
		f.RolledMonths = *o.RolledMonths
	}
	if o.DeferredRate != nil {
		f.DeferredRate = *o.DeferredRate
	}
	return f
}

// QuoteRequest is the full input snapshot of one calculation.
type QuoteRequest struct {
	PropertyCategory PropertyCategory          `json:"propertyType"`
	ProductGroup     ProductGroup              `json:"productGroup"`
	ProductType      string                    `json:"productType"`
	Retention        bool                      `json:"isRetention"`
	RetentionBand    string                    `json:"retentionLtv"`
	Criteria         Criteria                  `json:"criteria"`
	Loan             LoanRequest               `json:"loan"`
	ProcFeePct       Amount                    `json:"procFeePct"`
	BrokerFeePct     Amount                    `json:"brokerFeePct"`
	BrokerFeeFlat    Amount                    `json:"brokerFeeFlat"`
	Overrides        map[string]ColumnOverride `json:"overrides,omitempty"`
}

type Client struct {
	Name  string `json:"clientName"`
	Phone string `json:"clientPhone"`
	Email string `json:"clientEmail"`
}

type SubmitRequest struct {
	Client Client       `json:"client"`
	Quote  QuoteRequest `json:"quote"`
}

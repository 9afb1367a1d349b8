package domain

// ColumnResult is the outcome of one fee column.
type ColumnResult struct {
	ColumnKey      string   `json:"colKey"`
	ProductName    string   `json:"productName"`
	FullRateText   string   `json:"fullRateText"`
	PayRateText    string   `json:"payRateText"`
	ActualRateUsed float64  `json:"actualRateUsed"`
	RateOverridden bool     `json:"isRateOverridden"`
	FeePct         float64  `json:"feePct"`
	Gross          float64  `json:"gross"`
	Net            float64  `json:"net"`
	Fee            float64  `json:"feeAmt"`
	Rolled         float64  `json:"rolled"`
	Deferred       float64  `json:"deferred"`
	LTV            *float64 `json:"ltv"`
	NetLTV         *float64 `json:"netLtv"`
	RolledMonths   int      `json:"rolledMonths"`
	DeferredRate   float64  `json:"deferredCapPct"`
	PayRate        float64  `json:"payRate"`
	DirectDebit    float64  `json:"directDebit"`
	DDStartMonth   int      `json:"ddStartMonth"`
	MaxLTVRule     float64  `json:"maxLtvRule"`
	TermMonths     int      `json:"termMonths"`
	BelowMin       bool     `json:"belowMin"`
	HitMaxCap      bool     `json:"hitMaxCap"`
	Manual         bool     `json:"isManual"`
	ProcFee        float64  `json:"procFeeValue"`
	BrokerFee      float64  `json:"brokerFeeValue"`
}

// BasicGross is the non-optimised comparison figure of a column.
type BasicGross struct {
	ColumnKey string  `json:"feePercent"`
	Gross     float64 `json:"grossBasic"`
	LTVPct    *int    `json:"ltvPctBasic"`
	ProcFee   float64 `json:"procFeeValue"`
	BrokerFee float64 `json:"brokerFeeValue"`
}

type BestSummary struct {
	ColumnKey   string  `json:"colKey"`
	Gross       float64 `json:"gross"`
	GrossText   string  `json:"grossStr"`
	GrossLTVPct int     `json:"grossLtvPct"`
	Net         float64 `json:"net"`
	NetText     string  `json:"netStr"`
	NetLTVPct   int     `json:"netLtvPct"`
}

type ProductInfo struct {
	RevertRate  string  `json:"revertRate"`
	TotalTerm   string  `json:"totalTerm"`
	ERC         string  `json:"erc"`
	CurrentMVR  float64 `json:"currentMVR"`
	StandardBBR float64 `json:"standardBBR"`
}

// QuoteResult is the outcome of one calculation. ProductGroup is the range
// actually priced, which is Specialist when a Core request is not eligible.
type QuoteResult struct {
	Tier         Tier           `json:"tierValue"`
	TierLabel    string         `json:"tier"`
	ProductGroup ProductGroup   `json:"productGroup"`
	ProductName  string         `json:"productName"`
	MaxLTV       float64        `json:"maxLtv"`
	FeeColumns   []FeeColumn    `json:"feeColumns"`
	Quotable     bool           `json:"quotable"`
	Columns      []ColumnResult `json:"allColumnData"`
	Basic        []BasicGross   `json:"basicGrossColumnData"`
	Best         *BestSummary   `json:"bestSummary"`
	ProcFeePct   float64        `json:"procFeePct"`
	Info         ProductInfo    `json:"productInfo"`
}

type SubmitResult struct {
	RequestID string `json:"requestId"`
	Encoding  string `json:"encoding"`
}

package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"btl-quote/catalog"
	"btl-quote/domain"
	"btl-quote/repository"
)

var bandDigits = regexp.MustCompile(`\d+`)

type QuoteService struct {
	catalog *catalog.Catalog
	cache   repository.CacheRepository
	log     *logrus.Logger
}

// NewQuoteService creates a QuoteService. cache may be nil.
func NewQuoteService(cat *catalog.Catalog, cache repository.CacheRepository, log *logrus.Logger) *QuoteService {
	return &QuoteService{catalog: cat, cache: cache, log: log}
}

// Questions returns the criteria question set of a property category.
func (s *QuoteService) Questions(category domain.PropertyCategory) (domain.QuestionSet, error) {
	cat, ok := s.catalog.Category(category)
	if !ok {
		return domain.QuestionSet{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return cat.Questions, nil
}

// Quote prices every fee column of the selected product and picks the best.
// Only an invalid product selection is an error; missing loan inputs give a
// result with Quotable unset.
func (s *QuoteService) Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResult, error) {
	return s.quote(ctx, &req)
}

// quote prices req, leaving it normalised.
func (s *QuoteService) quote(ctx context.Context, req *domain.QuoteRequest) (domain.QuoteResult, error) {
	sel, err := s.resolve(req)
	if err != nil {
		return domain.QuoteResult{}, err
	}

	key := s.cacheKey(*req)
	if res, ok := s.cached(ctx, key); ok {
		return res, nil
	}

	res := s.price(*req, sel)

	if res.Quotable {
		s.store(ctx, key, res)
	}
	return res, nil
}

// selection is a validated product choice.
type selection struct {
	category catalog.Category
	product  catalog.Product
	group    domain.ProductGroup
	tier     domain.Tier
	rates    map[string]float64
	columns  []float64
}

// resolve normalises req in place and selects the rate table.
func (s *QuoteService) resolve(req *domain.QuoteRequest) (selection, error) {
	if req.PropertyCategory == "" {
		req.PropertyCategory = domain.Residential
	}
	cat, ok := s.catalog.Category(req.PropertyCategory)
	if !ok {
		return selection{}, fmt.Errorf("%w: %q", ErrUnknownCategory, req.PropertyCategory)
	}

	if req.ProductType == "" {
		req.ProductType = cat.Products[0].Name
	}
	product, ok := cat.Product(req.ProductType)
	if !ok {
		return selection{}, fmt.Errorf("%w: %q", ErrUnknownProduct, req.ProductType)
	}

	if req.Loan.Mode == "" {
		req.Loan.Mode = domain.ModeMaxOptimumGross
	}
	if !req.Loan.Mode.Valid() {
		return selection{}, fmt.Errorf("%w: %q", ErrInvalidLoanMode, req.Loan.Mode)
	}

	if req.Retention {
		req.RetentionBand = bandDigits.FindString(req.RetentionBand)
		if _, ok := cat.RetentionRates[req.RetentionBand]; !ok {
			return selection{}, fmt.Errorf("%w: %q", ErrInvalidRetentionBand, req.RetentionBand)
		}
	} else {
		req.RetentionBand = ""
	}

	answers := cat.Questions.Defaults()
	for k, v := range req.Criteria {
		answers[k] = v
	}
	req.Criteria = answers

	sel := selection{
		category: cat,
		product:  product,
		group:    domain.Specialist,
		tier:     ClassifyTier(answers, cat.Questions),
	}

	// Core falls back to Specialist when the case is outside Core criteria.
	if req.ProductGroup == domain.Core && cat.HasCore() && CoreEligible(answers, cat.CoreQuestions) {
		sel.group = domain.Core
	} else if req.ProductGroup == domain.Core {
		s.log.WithFields(logrus.Fields{
			"propertyType": req.PropertyCategory,
			"tier":         sel.tier,
		}).Info("case outside core criteria, pricing specialist range")
	}
	req.ProductGroup = sel.group

	var table catalog.RateTable
	switch {
	case sel.group == domain.Core && req.Retention:
		table = cat.CoreRetentionRates[req.RetentionBand]
		sel.columns = firstNonEmpty(cat.CoreRetentionFeeColumns, cat.RetentionFeeColumns)
	case sel.group == domain.Core:
		table = cat.CoreRates
		sel.columns = firstNonEmpty(cat.CoreFeeColumns, cat.FeeColumns)
	case req.Retention:
		table = cat.RetentionRates[req.RetentionBand]
		sel.columns = firstNonEmpty(cat.RetentionFeeColumns, cat.FeeColumns)
	default:
		table = cat.Rates
		sel.columns = cat.FeeColumns
	}
	sel.rates, _ = table.Lookup(sel.tier, product.Name)
	return sel, nil
}

func (s *QuoteService) price(req domain.QuoteRequest, sel selection) domain.QuoteResult {
	pc := PricingContext{
		ProductName: fmt.Sprintf("%s, %s", sel.product.Name, sel.tier.Label()),
		Product: domain.ProductRates{
			Name:       sel.product.Name,
			TermMonths: sel.product.TermMonths,
			IsTracker:  sel.product.Tracker,
			ERC:        sel.product.ERC,
			Rates:      sel.rates,
		},
		Limits: sel.category.Limits,
		MaxLTV: ResolveMaxLTV(s.catalog.LTVRules, LTVQuery{
			Tier:                sel.tier,
			Category:            req.PropertyCategory,
			Retention:           req.Retention,
			RetentionBand:       req.RetentionBand,
			FlatAboveCommercial: req.Criteria["flatAboveComm"] == "Yes",
		}),
		Core:          sel.group == domain.Core,
		CoreFloorRate: s.catalog.CoreFloorRate,
		Loan:          req.Loan,
		ProcFeePct:    s.procFeePct(req, sel.group),
	}
	pc.BrokerFeePct, _ = req.BrokerFeePct.Positive()
	pc.BrokerFeeFlat, _ = req.BrokerFeeFlat.Positive()

	res := domain.QuoteResult{
		Tier:         sel.tier,
		TierLabel:    sel.tier.Label(),
		ProductGroup: sel.group,
		ProductName:  pc.ProductName,
		MaxLTV:       pc.MaxLTV,
		Quotable:     CanQuote(req.Loan),
		ProcFeePct:   pc.ProcFeePct,
		Info: domain.ProductInfo{
			RevertRate:  s.catalog.RevertRate(sel.tier),
			TotalTerm:   strconv.Itoa(sel.category.Limits.TotalTermYears) + " years",
			ERC:         sel.product.ERC,
			CurrentMVR:  sel.category.Limits.CurrentMVR,
			StandardBBR: sel.category.Limits.StandardBBR,
		},
	}
	for _, pct := range sel.columns {
		res.FeeColumns = append(res.FeeColumns, domain.NewFeeColumn(pct))
	}
	if !res.Quotable {
		return res
	}

	for _, col := range res.FeeColumns {
		ov := req.Overrides[col.Key]
		if cr := OptimizeColumn(col, pc, ov); cr != nil {
			res.Columns = append(res.Columns, *cr)
		}
		if bg := BasicGross(col, pc, ov); bg != nil {
			res.Basic = append(res.Basic, *bg)
		}
	}
	pv, _ := req.Loan.PropertyValue.Positive()
	res.Best = Summarize(res.Columns, pv)

	s.log.WithFields(logrus.Fields{
		"product": pc.ProductName,
		"columns": len(res.Columns),
		"quoted":  res.Best != nil,
	}).Debug("quote priced")
	return res
}

// procFeePct is the broker proc fee in percent. Retention cases default to
// the lower retention fee; Core retention takes a further half point off.
func (s *QuoteService) procFeePct(req domain.QuoteRequest, group domain.ProductGroup) float64 {
	pct, ok := req.ProcFeePct.Positive()
	if !ok {
		pct = s.catalog.ProcFeePct
		if req.Retention {
			pct = s.catalog.RetentionProcFeePct
		}
	}
	if group == domain.Core && req.Retention {
		pct = max(pct-0.5, 0)
	}
	return pct
}

func (s *QuoteService) cacheKey(req domain.QuoteRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return "quote:" + strconv.FormatUint(xxhash.Sum64(data), 16)
}

func (s *QuoteService) cached(ctx context.Context, key string) (domain.QuoteResult, bool) {
	if s.cache == nil || key == "" {
		return domain.QuoteResult{}, false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.QuoteResult{}, false
	}
	var res domain.QuoteResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("discarding unreadable cached quote")
		return domain.QuoteResult{}, false
	}
	return res, true
}

func (s *QuoteService) store(ctx context.Context, key string, res domain.QuoteResult) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode quote for cache")
		return
	}
	// Not critical if it fails.
	if err := s.cache.Set(ctx, key, string(data)); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to cache quote")
	}
}

func firstNonEmpty(cols ...[]float64) []float64 {
	for _, c := range cols {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

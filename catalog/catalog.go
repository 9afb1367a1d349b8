// Package catalog holds the rate tables, criteria question sets and loan
// limits the quote engine reads. A Catalog is loaded once and never mutated.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"btl-quote/domain"
)

//go:embed default.yaml
var defaultCatalog []byte

// RateTable is tier label -> product name -> fee column key -> rate.
type RateTable map[string]map[string]map[string]float64

// Lookup returns the per-column rates of a product at a tier.
func (t RateTable) Lookup(tier domain.Tier, product string) (map[string]float64, bool) {
	products, ok := t[tier.Label()]
	if !ok {
		return nil, false
	}
	rates, ok := products[product]
	return rates, ok
}

type Product struct {
	Name       string `yaml:"name"`
	TermMonths int    `yaml:"termMonths"`
	Tracker    bool   `yaml:"tracker"`
	ERC        string `yaml:"erc"`
}

type Category struct {
	Limits                  domain.LoanLimits    `yaml:"limits"`
	Products                []Product            `yaml:"products"`
	FeeColumns              []float64            `yaml:"feeColumns"`
	RetentionFeeColumns     []float64            `yaml:"retentionFeeColumns"`
	CoreFeeColumns          []float64            `yaml:"coreFeeColumns"`
	CoreRetentionFeeColumns []float64            `yaml:"coreRetentionFeeColumns"`
	Questions               domain.QuestionSet   `yaml:"questions"`
	CoreQuestions           *domain.QuestionSet  `yaml:"coreQuestions"`
	Rates                   RateTable            `yaml:"rates"`
	RetentionRates          map[string]RateTable `yaml:"retentionRates"`
	CoreRates               RateTable            `yaml:"coreRates"`
	CoreRetentionRates      map[string]RateTable `yaml:"coreRetentionRates"`
}

func (c Category) Product(name string) (Product, bool) {
	for _, p := range c.Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// HasCore reports whether the category offers the Core product range.
func (c Category) HasCore() bool {
	return c.CoreQuestions != nil && len(c.CoreRates) > 0
}

// RetentionBands lists the retention LTV bands with a rate table, sorted.
func (c Category) RetentionBands() []string {
	bands := make([]string, 0, len(c.RetentionRates))
	for b := range c.RetentionRates {
		bands = append(bands, b)
	}
	sort.Strings(bands)
	return bands
}

type Catalog struct {
	CoreFloorRate       float64                              `yaml:"coreFloorRate"`
	ProcFeePct          float64                              `yaml:"procFeePct"`
	RetentionProcFeePct float64                              `yaml:"retentionProcFeePct"`
	RevertRates         map[string]string                    `yaml:"revertRates"`
	DefaultRevertRate   string                               `yaml:"defaultRevertRate"`
	LTVRules            domain.LTVRules                      `yaml:"ltvRules"`
	Categories          map[domain.PropertyCategory]Category `yaml:"categories"`
}

func (c *Catalog) Category(pc domain.PropertyCategory) (Category, bool) {
	cat, ok := c.Categories[pc]
	return cat, ok
}

// RevertRate returns the revert-rate text of a tier.
func (c *Catalog) RevertRate(tier domain.Tier) string {
	if s, ok := c.RevertRates[tier.Label()]; ok {
		return s
	}
	return c.DefaultRevertRate
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return errors.New("catalog has no property categories")
	}
	for name, cat := range c.Categories {
		l := cat.Limits
		if l.MinLoan <= 0 || l.MaxLoan <= l.MinLoan {
			return fmt.Errorf("category %s: invalid loan limits %v..%v", name, l.MinLoan, l.MaxLoan)
		}
		if l.MaxRolledMonths < 0 || l.MaxDeferredFix < 0 || l.MaxDeferredTracker < 0 {
			return fmt.Errorf("category %s: negative roll/defer caps", name)
		}
		if l.MinICRFix <= 0 || l.MinICRTracker <= 0 {
			return fmt.Errorf("category %s: ICR minimums must be positive", name)
		}
		if len(cat.Products) == 0 {
			return fmt.Errorf("category %s: no products", name)
		}
		for _, p := range cat.Products {
			if p.TermMonths <= 0 {
				return fmt.Errorf("category %s: product %q has no term", name, p.Name)
			}
		}
		if len(cat.FeeColumns) == 0 {
			return fmt.Errorf("category %s: no fee columns", name)
		}
	}
	return nil
}

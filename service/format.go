package service

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatMoney renders a sterling amount with no decimals: 750000 -> "£750,000".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	p := message.NewPrinter(language.BritishEnglish)
	return sign + "£" + p.Sprintf("%d", d.IntPart())
}

// FormatPercent renders a decimal rate with two places: 0.0589 -> "5.89%".
func FormatPercent(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return "—"
	}
	return decimal.NewFromFloat(rate).Shift(2).StringFixed(2) + "%"
}

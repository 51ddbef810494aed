// Package billing holds the outpatient bill arithmetic and bill numbering.
package billing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places amounts are rounded to.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// LineItem is a single billable service line as entered on the bill form.
type LineItem struct {
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
	TaxPercent      float64 `json:"tax_percent"`
}

// Amounts are the derived monetary fields of a bill.
// Each field is already rounded half-up to two decimals.
type Amounts struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// AmountsView is the display form of Amounts, every value with exactly two decimals.
type AmountsView struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discount_amount"`
	TaxAmount      string `json:"tax_amount"`
	TotalAmount    string `json:"total_amount"`
}

// NewLineItem builds a line item from typed values, applying the quantity rule.
func NewLineItem(unitPrice float64, quantity int, discountPercent, taxPercent float64) LineItem {
	if quantity < 1 {
		quantity = 1
	}
	return LineItem{
		UnitPrice:       finite(unitPrice),
		Quantity:        quantity,
		DiscountPercent: finite(discountPercent),
		TaxPercent:      finite(taxPercent),
	}
}

// ParseLineItem builds a line item from raw form input.
// Unparseable numbers become 0; quantity becomes 1 when unparseable and is
// floored to an integer of at least 1.
func ParseLineItem(unitPrice, quantity, discountPercent, taxPercent string) LineItem {
	return LineItem{
		UnitPrice:       parseNumber(unitPrice),
		Quantity:        parseQuantity(quantity),
		DiscountPercent: parseNumber(discountPercent),
		TaxPercent:      parseNumber(taxPercent),
	}
}

// Compute returns the amounts for the line item.
func (l LineItem) Compute() Amounts {
	return ComputeAmounts(l.UnitPrice, l.Quantity, l.DiscountPercent, l.TaxPercent)
}

// ComputeAmounts derives subtotal, discount, tax and total.
// Discount applies to the subtotal and tax applies after the discount.
// Out-of-range or negative inputs are not rejected; the arithmetic result is returned as is.
func ComputeAmounts(unitPrice float64, quantity int, discountPercent, taxPercent float64) Amounts {
	price := decimal.NewFromFloat(finite(unitPrice))
	subtotal := price.Mul(decimal.NewFromInt(int64(quantity)))
	discount := subtotal.Mul(decimal.NewFromFloat(finite(discountPercent))).Div(hundred)
	afterDiscount := subtotal.Sub(discount)
	tax := afterDiscount.Mul(decimal.NewFromFloat(finite(taxPercent))).Div(hundred)
	total := afterDiscount.Add(tax)

	return Amounts{
		Subtotal:       roundMoney(subtotal),
		DiscountAmount: roundMoney(discount),
		AfterDiscount:  roundMoney(afterDiscount),
		TaxAmount:      roundMoney(tax),
		Total:          roundMoney(total),
	}
}

// View formats the amounts for display and storage.
func (a Amounts) View() AmountsView {
	return AmountsView{
		Subtotal:       a.Subtotal.StringFixed(MoneyPlaces),
		DiscountAmount: a.DiscountAmount.StringFixed(MoneyPlaces),
		TaxAmount:      a.TaxAmount.StringFixed(MoneyPlaces),
		TotalAmount:    a.Total.StringFixed(MoneyPlaces),
	}
}

// Floats returns subtotal, discount, tax and total as float64 for decimal(15,2) columns.
func (a Amounts) Floats() (subtotal, discount, tax, total float64) {
	return a.Subtotal.InexactFloat64(),
		a.DiscountAmount.InexactFloat64(),
		a.TaxAmount.InexactFloat64(),
		a.Total.InexactFloat64()
}

// RoundMoney rounds v half-up to two decimals.
func RoundMoney(v float64) float64 {
	return roundMoney(decimal.NewFromFloat(finite(v))).InexactFloat64()
}

// FormatMoney renders v with exactly two decimals.
func FormatMoney(v float64) string {
	return roundMoney(decimal.NewFromFloat(finite(v))).StringFixed(MoneyPlaces)
}

// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts a bill carries.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

func parseQuantity(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

// NaN and infinities cannot be represented as decimals.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Package billing holds the document rules shared by quotes, purchase orders
// and invoices: totals, numbering, status transitions and conversion.
package billing

import (
	"fmt"

	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is one priced row as entered by the caller
type Item struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Totals are the computed amounts of a document. Values are exact; round
// only for display.
type Totals struct {
	Subtotal      decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
}

// LineTotal returns quantity x unit price
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// Compute derives the document totals from its items, an absolute discount
// and a tax rate percentage. The taxable amount is floored at zero.
func Compute(items []Item, discount, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item.Quantity, item.UnitPrice))
	}

	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	// x/100 is exact as a decimal shift
	tax := taxable.Mul(taxRate).Shift(-2)

	return Totals{
		Subtotal:      subtotal,
		TaxableAmount: taxable,
		TaxAmount:     tax,
		Total:         taxable.Add(tax),
	}
}

// Validate checks caller input before Compute runs
func Validate(items []Item, discount, taxRate decimal.Decimal) error {
	var fieldErrors []apperror.FieldError

	if len(items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range items {
		if item.Description == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "is required",
			})
		}
		if !item.Quantity.IsPositive() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be greater than 0",
			})
		}
		if item.UnitPrice.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].unit_price", i),
				Message: "must not be negative",
			})
		}
	}
	if discount.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "discount", Message: "must not be negative"})
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax_rate", Message: "must be between 0 and 100"})
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// Price computes totals for items and writes them into doc. The returned
// line items carry their own totals, in input order.
func Price(doc *entity.PricedDocument, items []Item, discount, taxRate decimal.Decimal) []entity.LineItem {
	totals := Compute(items, discount, taxRate)

	doc.Discount = discount
	doc.TaxRate = taxRate
	doc.Subtotal = totals.Subtotal
	doc.TaxAmount = totals.TaxAmount
	doc.Total = totals.Total

	lines := make([]entity.LineItem, len(items))
	for i, item := range items {
		lines[i] = entity.LineItem{
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       LineTotal(item.Quantity, item.UnitPrice),
		}
	}
	return lines
}

// TaxableAmount recovers the discounted subtotal of a stored document
func TaxableAmount(doc entity.PricedDocument) decimal.Decimal {
	return doc.Total.Sub(doc.TaxAmount)
}

// Display formats an amount with two decimals for output boundaries
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

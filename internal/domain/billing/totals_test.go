package billing

import (
	"math/rand"
	"testing"

	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func randomAmount(r *rand.Rand, maxCents int64) decimal.Decimal {
	return decimal.New(r.Int63n(maxCents), -2)
}

func TestComputeScenario(t *testing.T) {
	totals := Compute([]Item{{Description: "Coupe", Quantity: d("2"), UnitPrice: d("50")}}, d("10"), d("20"))

	assert.True(t, totals.Subtotal.Equal(d("100")), totals.Subtotal.String())
	assert.True(t, totals.TaxableAmount.Equal(d("90")), totals.TaxableAmount.String())
	assert.True(t, totals.TaxAmount.Equal(d("18")), totals.TaxAmount.String())
	assert.True(t, totals.Total.Equal(d("108")), totals.Total.String())
}

func TestComputeEmptyItems(t *testing.T) {
	totals := Compute(nil, decimal.Zero, d("20"))
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeDiscountLargerThanSubtotal(t *testing.T) {
	totals := Compute([]Item{{Quantity: d("1"), UnitPrice: d("30")}}, d("45"), d("20"))
	assert.True(t, totals.TaxableAmount.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeSubtotalIsExactSum(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		items := make([]Item, r.Intn(8))
		expected := decimal.Zero
		for i := range items {
			items[i] = Item{Quantity: randomAmount(r, 100000), UnitPrice: randomAmount(r, 1000000)}
			expected = expected.Add(items[i].Quantity.Mul(items[i].UnitPrice))
		}
		totals := Compute(items, decimal.Zero, decimal.Zero)
		require.True(t, totals.Subtotal.Equal(expected), "got %s want %s", totals.Subtotal, expected)
	}
}

func TestComputeTotalFormula(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 0; n < 500; n++ {
		subtotal := randomAmount(r, 10000000)
		discount := randomAmount(r, 10000000)
		taxRate := decimal.New(r.Int63n(10001), -2) // 0.00 to 100.00

		totals := Compute([]Item{{Quantity: decimal.NewFromInt(1), UnitPrice: subtotal}}, discount, taxRate)

		taxable := decimal.Max(decimal.Zero, subtotal.Sub(discount))
		want := taxable.Add(taxable.Mul(taxRate).Div(decimal.NewFromInt(100)))
		require.True(t, totals.Total.Equal(want), "subtotal=%s discount=%s rate=%s got %s want %s",
			subtotal, discount, taxRate, totals.Total, want)
		require.False(t, totals.TaxableAmount.IsNegative())
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	items := []Item{
		{Quantity: d("3"), UnitPrice: d("19.99")},
		{Quantity: d("0.5"), UnitPrice: d("33.33")},
	}
	first := Compute(items, d("7.5"), d("5.5"))
	second := Compute(items, d("7.5"), d("5.5"))

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestValidate(t *testing.T) {
	ok := []Item{{Description: "Brushing", Quantity: d("1"), UnitPrice: d("25")}}
	require.NoError(t, Validate(ok, decimal.Zero, d("20")))

	cases := map[string]struct {
		items    []Item
		discount decimal.Decimal
		taxRate  decimal.Decimal
		field    string
	}{
		"no items":          {nil, decimal.Zero, decimal.Zero, "items"},
		"zero quantity":     {[]Item{{Description: "x", Quantity: d("0"), UnitPrice: d("1")}}, decimal.Zero, decimal.Zero, "items[0].quantity"},
		"negative price":    {[]Item{{Description: "x", Quantity: d("1"), UnitPrice: d("-1")}}, decimal.Zero, decimal.Zero, "items[0].unit_price"},
		"missing label":     {[]Item{{Quantity: d("1"), UnitPrice: d("1")}}, decimal.Zero, decimal.Zero, "items[0].description"},
		"negative discount": {ok, d("-5"), decimal.Zero, "discount"},
		"tax above 100":     {ok, decimal.Zero, d("100.01"), "tax_rate"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := Validate(tc.items, tc.discount, tc.taxRate)
			require.True(t, apperror.IsKind(err, apperror.KindValidation))
			fields := apperror.GetAppError(err).Errors
			require.NotEmpty(t, fields)
			assert.Equal(t, tc.field, fields[0].Field)
		})
	}
}

func TestPriceWritesDocumentTotals(t *testing.T) {
	var doc entity.PricedDocument
	lines := Price(&doc, []Item{
		{Description: "Color", Quantity: d("1"), UnitPrice: d("60")},
		{Description: "Cut", Quantity: d("2"), UnitPrice: d("20")},
	}, d("10"), d("20"))

	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Position)
	assert.True(t, lines[1].Total.Equal(d("40")))
	assert.True(t, doc.Subtotal.Equal(d("100")))
	assert.True(t, doc.Total.Equal(d("108")))
	assert.True(t, TaxableAmount(doc).Equal(d("90")))
}

func TestDisplayRoundsOnlyAtOutput(t *testing.T) {
	assert.Equal(t, "108.00", Display(d("108")))
	assert.Equal(t, "0.33", Display(d("1").Div(d("3"))))
}

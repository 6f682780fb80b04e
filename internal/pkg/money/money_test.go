package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	total, err := LineTotal(500, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)

	_, err = LineTotal(500, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = LineTotal(500, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDiscountFloorsAndStaysBounded(t *testing.T) {
	assert.Equal(t, int64(440), Discount(2200, 20))
	assert.Equal(t, int64(0), Discount(2200, 0))
	assert.Equal(t, int64(2200), Discount(2200, 100))
	// 199 * 33 / 100 = 65.67 -> floor
	assert.Equal(t, int64(65), Discount(199, 33))

	for percent := 0; percent <= 100; percent++ {
		d := Discount(9999, percent)
		assert.GreaterOrEqual(t, d, int64(0))
		assert.LessOrEqual(t, d, int64(9999))
	}
}

func TestFinalTotalNeverNegativeForValidPercent(t *testing.T) {
	raw := int64(1234)
	for percent := 0; percent <= 100; percent++ {
		final := FinalTotal(raw, Discount(raw, percent))
		assert.GreaterOrEqual(t, final, int64(0))
	}
	assert.Equal(t, int64(1760), FinalTotal(2200, 440))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-5))
	assert.Equal(t, 100, ClampPercent(250))
	assert.Equal(t, 42, ClampPercent(42))
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "17.60", FormatDollars(1760))
	assert.Equal(t, "0.05", FormatDollars(5))
	assert.Equal(t, "0.00", FormatDollars(0))
	assert.Equal(t, "-3.50", FormatDollars(-350))
}

func TestCentsFromDecimalDollars(t *testing.T) {
	assert.Equal(t, int64(1099), CentsFromDecimalDollars(decimal.RequireFromString("10.99")))
	assert.Equal(t, int64(1000), CentsFromDecimalDollars(decimal.RequireFromString("10")))
	// round half away from zero
	assert.Equal(t, int64(1050), CentsFromDecimalDollars(decimal.RequireFromString("10.495")))
	assert.Equal(t, int64(0), CentsFromDecimalDollars(decimal.Zero))
}

package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "storefront/internal/service/cart/domain"
)

func TestParseQuantity(t *testing.T) {
	qty, err := parseQuantity("3")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)
}

func TestParseQuantityRejectsCorruptValues(t *testing.T) {
	for _, raw := range []string{"12abc", "", "0", "-1", "1.5", " 2"} {
		_, err := parseQuantity(raw)
		assert.ErrorIs(t, err, cartdomain.ErrCorruptCart, "raw=%q", raw)
	}
}

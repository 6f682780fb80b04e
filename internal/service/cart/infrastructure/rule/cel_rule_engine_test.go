package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/cart/domain"
)

func TestCELRuleAdapterEvaluate(t *testing.T) {
	adapter, err := NewCELRuleAdapter("quantity <= 99 && unit_price_cents <= 100000000")
	require.NoError(t, err)

	allowed, err := adapter.Evaluate(domain.Fact{ProductID: 7, Quantity: 3, UnitPriceCents: 500})
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = adapter.Evaluate(domain.Fact{ProductID: 7, Quantity: 100, UnitPriceCents: 500})
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = adapter.Evaluate(domain.Fact{ProductID: 7, Quantity: 1, UnitPriceCents: 100000001})
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCELRuleAdapterRejectsBadExpressions(t *testing.T) {
	_, err := NewCELRuleAdapter("quantity +")
	assert.Error(t, err)

	_, err = NewCELRuleAdapter("quantity + 1")
	assert.Error(t, err, "non-bool expressions are rejected at compile time")
}

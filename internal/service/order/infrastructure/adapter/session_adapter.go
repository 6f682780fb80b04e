package adapter

import (
	"context"

	cartinfra "storefront/internal/service/cart/infrastructure"
	"storefront/internal/service/order/port"
)

// SessionAdapter 把 Redis 会话存储适配为结算侧的 port.SessionState
type SessionAdapter struct {
	store *cartinfra.SessionStore
}

func NewSessionAdapter(store *cartinfra.SessionStore) *SessionAdapter {
	return &SessionAdapter{store: store}
}

func (a *SessionAdapter) LoadCart(ctx context.Context, sessionID string) (map[int64]int, error) {
	cart, err := a.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(cart))
	for pid, qty := range cart {
		out[int64(pid)] = qty
	}
	return out, nil
}

func (a *SessionAdapter) LoadDiscount(ctx context.Context, sessionID string) (*port.AppliedDiscount, error) {
	discount, err := a.store.LoadDiscount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, nil
	}
	return &port.AppliedDiscount{Code: discount.Code, Percent: discount.Percent}, nil
}

func (a *SessionAdapter) ClearCheckout(ctx context.Context, sessionID string) error {
	return a.store.ClearCheckoutState(ctx, sessionID)
}

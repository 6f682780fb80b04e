// internal/service/cart/port/catalog.go
package port

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found in catalog")

// Product 是购物车视角下的商品摘要。
type Product struct {
	ID             int64
	Title          string
	UnitPriceCents int64
}

// Catalog 是商品目录协作方的出端口。
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

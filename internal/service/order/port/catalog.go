package port

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// Product 结算侧需要的商品投影
type Product struct {
	ID             int64
	Title          string
	UnitPriceCents int64
}

// Catalog 商品目录防腐层接口
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

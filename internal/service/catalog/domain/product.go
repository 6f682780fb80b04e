// internal/service/catalog/domain/product.go
package domain

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// Product 是商品目录里的一条商品记录。
// PriceCents 是当前标价，下单时会被快照进订单行，之后的改价不影响历史订单。
type Product struct {
	ID          int64
	Title       string
	PriceCents  int64
	Description string
	ImageURL    string
}

// ProductRepository 定义商品的持久化接口，由基础设施层实现。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
}

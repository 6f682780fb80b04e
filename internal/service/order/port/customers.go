package port

import (
	"context"
	"errors"
)

var ErrCustomerNotFound = errors.New("customer not found")

// Customer 通知投递所需的收件人信息
type Customer struct {
	ID    int64
	Name  string
	Email string
}

// CustomerDirectory 客户目录防腐层接口。只返回未软删除的账户。
type CustomerDirectory interface {
	FindActive(ctx context.Context, id int64) (*Customer, error)
	// FindByID 不论删除状态，用于历史订单展示
	FindByID(ctx context.Context, id int64) (*Customer, error)
}

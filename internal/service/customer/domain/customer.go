package domain

import (
	"context"
	"errors"
)

// Customer 买家账户。软删除的账户保留在表中以便历史订单仍可关联。
type Customer struct {
	ID        int64
	Name      string
	Email     string
	IsDeleted bool
}

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository 定义了客户数据的持久化契约
type CustomerRepository interface {
	// FindActive 查找未被软删除的客户，软删除的账户返回 ErrCustomerNotFound
	FindActive(ctx context.Context, id int64) (*Customer, error)
	// FindByID 查找客户，不论删除状态。用于历史订单的展示
	FindByID(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, customer *Customer) error
}

package domain

import (
	"context"
	"errors"
)

// ErrStaleStatus CAS 状态更新发现期望状态已被并发修改
var ErrStaleStatus = errors.New("order status changed concurrently")

// DashboardStats 管理后台汇总数据。已取消订单不计入任何口径。
type DashboardStats struct {
	TotalOrders        int64
	TotalSalesCents    int64
	AvgOrderValueCents int64
	SalesByDay         []DailySales
}

type DailySales struct {
	Day        string // "2026-08-28"
	SalesCents int64
}

// OrderRepository 订单持久化契约
type OrderRepository interface {
	// Create 在单个事务内持久化订单及其全部明细行
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	// UpdateStatus 以 CAS 方式迁移状态：只有当前状态仍为 from 时才写入 to,
	// 否则返回 ErrStaleStatus
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Stats(ctx context.Context) (*DashboardStats, error)
	PendingCount(ctx context.Context) (int64, error)
}

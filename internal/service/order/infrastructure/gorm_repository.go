package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/service/order/domain"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 订单头与明细行在同一事务内写入，任何一行失败则全部回滚
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := fromDomainOrder(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		return errors.Wrap(err, "failed to create order")
	}
	order.ID = int64(model.ID)
	for i := range model.Items {
		order.Items[i].ID = int64(model.Items[i].ID)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to find order")
	}
	return toDomainOrder(&model), nil
}

// UpdateStatus 带状态前置条件的单条 UPDATE。
// RowsAffected == 0 说明订单不存在或状态已被并发迁移，由调用方重读区分。
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.Status) error {
	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update order status")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check order existence")
		}
		if count == 0 {
			return domain.ErrOrderNotFound
		}
		return domain.ErrStaleStatus
	}
	return nil
}

func (r *GormOrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders by user")
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	return toDomainOrders(models), nil
}

func (r *GormOrderRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	var totals struct {
		Count int64
		Sales int64
	}
	err := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_price_cents), 0) AS sales").
		Where("status <> ?", string(domain.StatusCancelled)).
		Scan(&totals).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate order totals")
	}
	stats.TotalOrders = totals.Count
	stats.TotalSalesCents = totals.Sales
	if totals.Count > 0 {
		stats.AvgOrderValueCents = totals.Sales / totals.Count
	}

	var rows []struct {
		Day   string
		Sales int64
	}
	err = r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Select("DATE_FORMAT(created_date, '%Y-%m-%d') AS day, COALESCE(SUM(total_price_cents), 0) AS sales").
		Where("status <> ?", string(domain.StatusCancelled)).
		Group("day").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate daily sales")
	}
	for _, row := range rows {
		stats.SalesByDay = append(stats.SalesByDay, domain.DailySales{Day: row.Day, SalesCents: row.Sales})
	}
	return stats, nil
}

func (r *GormOrderRepository) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("status = ?", string(domain.StatusPending)).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count pending orders")
	}
	return count, nil
}

func toDomainOrders(models []OrderModel) []domain.Order {
	out := make([]domain.Order, 0, len(models))
	for i := range models {
		out = append(out, *toDomainOrder(&models[i]))
	}
	return out
}

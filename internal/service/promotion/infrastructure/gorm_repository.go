// internal/service/promotion/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/service/promotion/domain"
)

// MySQL 对唯一索引冲突返回的错误码
const mysqlDuplicateEntry = 1062

// GormCouponRepository 是 CouponRepository 的 GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByCode 大小写不敏感地查找券码。码入库时已归一化为大写，
// 这里对输入再做一次 UPPER，混合大小写输入总能命中。
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).Where("code = UPPER(?)", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	return ToDomainCoupon(&model), nil
}

func (r *GormCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	model := FromDomainCoupon(coupon)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var mysqlErr *gomysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrCodeTaken
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCodeTaken
		}
		return errors.Wrapf(err, "create coupon %q", coupon.Code)
	}
	coupon.ID = int64(model.ID)
	return nil
}

func (r *GormCouponRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.db.WithContext(ctx).Model(&CouponModel{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "set coupon %d active=%t", id, active)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

func (r *GormCouponRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&CouponModel{}, id)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "delete coupon %d", id)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

func (r *GormCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	var models []CouponModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	coupons := make([]domain.Coupon, 0, len(models))
	for i := range models {
		coupons = append(coupons, *ToDomainCoupon(&models[i]))
	}
	return coupons, nil
}

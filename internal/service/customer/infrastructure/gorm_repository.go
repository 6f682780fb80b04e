package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/service/customer/domain"
)

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindActive(ctx context.Context, id int64) (*domain.Customer, error) {
	var model CustomerModel
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, "failed to find active customer")
	}
	return toDomainCustomer(&model), nil
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var model CustomerModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, "failed to find customer")
	}
	return toDomainCustomer(&model), nil
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	model := fromDomainCustomer(customer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "failed to create customer")
	}
	customer.ID = int64(model.ID)
	return nil
}

func toDomainCustomer(m *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:        int64(m.ID),
		Name:      m.Name,
		Email:     m.Email,
		IsDeleted: m.IsDeleted,
	}
}

func fromDomainCustomer(c *domain.Customer) *CustomerModel {
	model := &CustomerModel{
		Name:      c.Name,
		Email:     c.Email,
		IsDeleted: c.IsDeleted,
	}
	model.ID = uint(c.ID)
	return model
}

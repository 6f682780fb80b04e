package adapter

import (
	"context"

	"github.com/pkg/errors"

	customerdomain "storefront/internal/service/customer/domain"
	"storefront/internal/service/order/port"
)

// CustomerAdapter 把客户上下文适配为结算侧的 port.CustomerDirectory
type CustomerAdapter struct {
	customers customerdomain.CustomerRepository
}

func NewCustomerAdapter(customers customerdomain.CustomerRepository) *CustomerAdapter {
	return &CustomerAdapter{customers: customers}
}

func (a *CustomerAdapter) FindActive(ctx context.Context, id int64) (*port.Customer, error) {
	customer, err := a.customers.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, customerdomain.ErrCustomerNotFound) {
			return nil, port.ErrCustomerNotFound
		}
		return nil, err
	}
	return toPortCustomer(customer), nil
}

func (a *CustomerAdapter) FindByID(ctx context.Context, id int64) (*port.Customer, error) {
	customer, err := a.customers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, customerdomain.ErrCustomerNotFound) {
			return nil, port.ErrCustomerNotFound
		}
		return nil, err
	}
	return toPortCustomer(customer), nil
}

func toPortCustomer(c *customerdomain.Customer) *port.Customer {
	return &port.Customer{ID: c.ID, Name: c.Name, Email: c.Email}
}

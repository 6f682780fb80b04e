package infrastructure

import "storefront/internal/service/order/domain"

func toDomainOrder(m *OrderModel) *domain.Order {
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, item := range m.Items {
		items = append(items, domain.OrderItem{
			ID:                   int64(item.ID),
			ProductID:            item.ProductID,
			Quantity:             item.Quantity,
			PriceAtPurchaseCents: item.PriceAtPurchaseCents,
		})
	}
	return &domain.Order{
		ID:                  int64(m.ID),
		UserID:              m.UserID,
		CreatedDate:         m.CreatedDate,
		TotalPriceCents:     m.TotalPriceCents,
		DiscountAmountCents: m.DiscountAmountCents,
		Status:              domain.Status(m.Status),
		Items:               items,
	}
}

func fromDomainOrder(o *domain.Order) *OrderModel {
	items := make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemModel{
			ProductID:            item.ProductID,
			Quantity:             item.Quantity,
			PriceAtPurchaseCents: item.PriceAtPurchaseCents,
		})
	}
	model := &OrderModel{
		UserID:              o.UserID,
		CreatedDate:         o.CreatedDate,
		TotalPriceCents:     o.TotalPriceCents,
		DiscountAmountCents: o.DiscountAmountCents,
		Status:              string(o.Status),
		Items:               items,
	}
	model.ID = uint(o.ID)
	return model
}

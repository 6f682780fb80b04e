package domain

// Status 订单生命周期状态。持久化为字符串，历史数据依赖这些确切值。
type Status string

const (
	StatusPending   Status = "Pending"
	StatusShipped   Status = "Shipped"
	StatusCancelled Status = "Cancelled"
)

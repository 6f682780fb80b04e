// internal/service/cart/domain/cart.go
package domain

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrCorruptCart 表示会话中的购物车数据无法解析（键不是合法的商品 ID）。
	// 正常写路径只会产生规范键，出现这个错误意味着会话被外部篡改。
	ErrCorruptCart  = errors.New("cart session data is corrupt")
	ErrRuleRejected = errors.New("cart admission rule rejected the item")
)

// ProductID 是经过校验的商品标识。会话反序列化时非数字键直接报错，
// 不做静默过滤。
type ProductID int64

// ParseProductID 在会话边界把字符串键解析为商品 ID。
func ParseProductID(raw string) (ProductID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrCorruptCart
	}
	return ProductID(id), nil
}

func (id ProductID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Cart 是单个会话的商品 ID → 数量映射。
// 不变量: 数量恒 ≥ 1，减到 0 的条目直接删除，绝不存 0。
type Cart map[ProductID]int

// CartRepository 定义会话购物车的读写接口。
// 同一会话内的并发写按存储的 last-write-wins 语义处理。
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	// Increment 把指定商品数量 +1（不存在则置 1），返回新数量。
	Increment(ctx context.Context, sessionID string, productID ProductID) (int, error)
	// Remove 删除条目；条目不存在时为幂等的空操作。
	Remove(ctx context.Context, sessionID string, productID ProductID) error
	// Quantity 返回当前数量，条目不存在时为 0。
	Quantity(ctx context.Context, sessionID string, productID ProductID) (int, error)
}

// Fact 是加购准入规则的评估输入，quantity 是加购后的目标数量。
type Fact struct {
	ProductID      int64
	Quantity       int
	UnitPriceCents int64
}

// AdmissionRule 约束购物车的边界（数量上限、单价上限等），
// 规则内容由配置给出。
type AdmissionRule interface {
	Evaluate(fact Fact) (bool, error)
}

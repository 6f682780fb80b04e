// internal/service/cart/infrastructure/redis_session.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"storefront/internal/pkg/redis"
	cartdomain "storefront/internal/service/cart/domain"
	promodomain "storefront/internal/service/promotion/domain"
)

// 会话状态保留 30 天，与登录态无关，弃置的购物车自然过期。
const sessionTTL = 30 * 24 * time.Hour

// SessionStore 是会话状态的 Redis 实现:
// 购物车存为 hash（field=商品ID, value=数量），已应用折扣存为独立的 JSON 键。
// 它同时实现 cart 的 CartRepository 与 promotion 的 DiscountStore。
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// parseQuantity 严格解析 hash 里存的数量。
// Atoi 拒绝尾随杂质("12abc"),数量至少为 1——HINCRBY 不会写出更小的值。
func parseQuantity(raw string) (int, error) {
	qty, err := strconv.Atoi(raw)
	if err != nil || qty < 1 {
		return 0, errors.Wrapf(cartdomain.ErrCorruptCart, "cart quantity %q", raw)
	}
	return qty, nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("session:{%s}:cart", sessionID)
}

func discountKey(sessionID string) string {
	return fmt.Sprintf("session:{%s}:discount", sessionID)
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (cartdomain.Cart, error) {
	fields, err := s.client.GetClient().HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	cart := make(cartdomain.Cart, len(fields))
	for rawID, rawQty := range fields {
		// 非法键在反序列化边界直接报错，不做静默过滤
		productID, err := cartdomain.ParseProductID(rawID)
		if err != nil {
			return nil, errors.Wrapf(err, "cart field %q", rawID)
		}
		qty, err := parseQuantity(rawQty)
		if err != nil {
			return nil, err
		}
		cart[productID] = qty
	}
	return cart, nil
}

func (s *SessionStore) Increment(ctx context.Context, sessionID string, productID cartdomain.ProductID) (int, error) {
	key := cartKey(sessionID)
	pipe := s.client.GetClient().TxPipeline()
	incr := pipe.HIncrBy(ctx, key, productID.String(), 1)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "increment cart item")
	}
	return int(incr.Val()), nil
}

func (s *SessionStore) Remove(ctx context.Context, sessionID string, productID cartdomain.ProductID) error {
	// HDEL 对不存在的 field 是空操作，天然幂等
	if err := s.client.GetClient().HDel(ctx, cartKey(sessionID), productID.String()).Err(); err != nil {
		return errors.Wrap(err, "remove cart item")
	}
	return nil
}

func (s *SessionStore) Quantity(ctx context.Context, sessionID string, productID cartdomain.ProductID) (int, error) {
	raw, err := s.client.GetClient().HGet(ctx, cartKey(sessionID), productID.String()).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "get cart quantity")
	}
	return parseQuantity(raw)
}

func (s *SessionStore) SaveDiscount(ctx context.Context, sessionID string, discount promodomain.AppliedDiscount) error {
	data, err := json.Marshal(discount)
	if err != nil {
		return errors.Wrap(err, "marshal discount")
	}
	if err := s.client.GetClient().Set(ctx, discountKey(sessionID), data, sessionTTL).Err(); err != nil {
		return errors.Wrap(err, "save discount")
	}
	return nil
}

func (s *SessionStore) LoadDiscount(ctx context.Context, sessionID string) (*promodomain.AppliedDiscount, error) {
	data, err := s.client.GetClient().Get(ctx, discountKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load discount")
	}
	var discount promodomain.AppliedDiscount
	if err := json.Unmarshal(data, &discount); err != nil {
		return nil, errors.Wrap(err, "unmarshal discount")
	}
	return &discount, nil
}

func (s *SessionStore) ClearDiscount(ctx context.Context, sessionID string) error {
	if err := s.client.GetClient().Del(ctx, discountKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "clear discount")
	}
	return nil
}

// ClearCheckoutState 在订单提交成功后一次性清掉购物车与折扣。
// 两个 DEL 走同一个 pipeline，消费过的折扣不会悄悄带进下一个购物车。
func (s *SessionStore) ClearCheckoutState(ctx context.Context, sessionID string) error {
	pipe := s.client.GetClient().TxPipeline()
	pipe.Del(ctx, cartKey(sessionID))
	pipe.Del(ctx, discountKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "clear checkout state")
	}
	return nil
}

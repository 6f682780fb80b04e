// internal/pkg/money/money.go
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// 所有金额一律以最小货币单位（分）的 int64 表示。
// 浮点数只允许出现在录入边界，入库之前必须经过 CentsFromDecimalDollars 一次性换算。

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// LineTotal 计算单行金额: 单价 × 数量。
func LineTotal(unitPriceCents int64, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	return unitPriceCents * int64(quantity), nil
}

// Discount 按整数百分比向下取整计算折扣金额。
// percent 必须已被调用方钳制到 [0, 100]，越界属于调用方错误。
func Discount(rawTotalCents int64, percent int) int64 {
	return rawTotalCents * int64(percent) / 100
}

// FinalTotal 计算应付金额。percent ≤ 100 保证结果不为负。
func FinalTotal(rawTotalCents, discountCents int64) int64 {
	return rawTotalCents - discountCents
}

// ClampPercent 将百分比钳制到 [0, 100]。
func ClampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// FormatDollars 把分渲染为 "12.34" 形式的美元字符串，仅用于展示与导出。
func FormatDollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// CentsFromDecimalDollars 把人工录入的美元金额一次性换算为分。
// 四舍五入采用 round half away from zero，读路径上绝不再做任何换算。
func CentsFromDecimalDollars(dollars decimal.Decimal) int64 {
	return dollars.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

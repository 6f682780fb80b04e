// internal/service/promotion/infrastructure/gorm_model.go
package infrastructure

import (
	"gorm.io/gorm"
)

// CouponModel 对应数据库中的 coupons 表
type CouponModel struct {
	gorm.Model
	Code            string `gorm:"size:20;uniqueIndex;not null"`
	DiscountPercent int    `gorm:"not null"`
	Active          bool   `gorm:"default:true"`
}

// TableName 指定 GORM 应该使用的表名
func (CouponModel) TableName() string {
	return "coupons"
}

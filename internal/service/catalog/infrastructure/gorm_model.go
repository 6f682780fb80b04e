// internal/service/catalog/infrastructure/gorm_model.go
package infrastructure

import (
	"gorm.io/gorm"
)

// ProductModel 对应数据库中的 products 表
type ProductModel struct {
	gorm.Model
	Title       string `gorm:"size:250;not null"`
	PriceCents  int64  `gorm:"not null"`
	Description string `gorm:"size:500"`
	ImageURL    string `gorm:"size:250"`
}

// TableName 指定 GORM 应该使用的表名
func (ProductModel) TableName() string {
	return "products"
}

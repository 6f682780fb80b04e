package infrastructure

import "gorm.io/gorm"

// CustomerModel GORM 数据模型
type CustomerModel struct {
	gorm.Model
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	IsDeleted bool   `gorm:"not null;default:false"`
}

func (CustomerModel) TableName() string {
	return "users"
}

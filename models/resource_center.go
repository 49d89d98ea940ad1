package models

import "time"

// ResourceCenter 表示物资中心
type ResourceCenter struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"type:varchar(100);not null" json:"name"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Address        string  `gorm:"type:varchar(200)" json:"address"`
	Type           string  `gorm:"type:varchar(100)" json:"type"` // 物资类型: Life Jackets, First Aid Kits, ...
	Inventory      string  `gorm:"type:text" json:"inventory"`
	ContactPerson  string  `gorm:"type:varchar(100)" json:"contact_person"`
	ContactPhone   string  `gorm:"type:varchar(20)" json:"contact_phone"`
	OrganizationID *uint   `json:"organization_id"`
	Capacity       int     `gorm:"not null;default:0" json:"capacity"`
	CurrentStock   int     `gorm:"not null;default:0" json:"current_stock"`
	Status         string  `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

package models

import "time"

// Shelter 表示避难所
type Shelter struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	Name             string  `gorm:"type:varchar(100);not null" json:"name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Address          string  `gorm:"type:varchar(200)" json:"address"`
	Capacity         int     `gorm:"not null;default:0" json:"capacity"`
	CurrentOccupancy int     `gorm:"not null;default:0" json:"current_occupancy"`
	Type             string  `gorm:"type:varchar(50)" json:"type"`
	ContactPerson    string  `gorm:"type:varchar(100)" json:"contact_person"`
	ContactPhone     string  `gorm:"type:varchar(20)" json:"contact_phone"`
	OrganizationID   *uint   `json:"organization_id"`
	Facilities       string  `gorm:"type:text" json:"facilities"` // 逗号分隔的设施列表
	Status           string  `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// AvailableCapacity 返回剩余可容纳人数
func (s *Shelter) AvailableCapacity() int {
	return s.Capacity - s.CurrentOccupancy
}

package models

import "time"

// Organization 表示响应机构（政府、NGO、志愿者团体等）
type Organization struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	Name          string   `gorm:"type:varchar(100);not null" json:"name"`
	Type          string   `gorm:"type:varchar(50)" json:"type"`         // Government, NGO, Volunteer Group, Private
	Category      string   `gorm:"type:varchar(100)" json:"category"`    // Emergency Response, Medical, Relief, Logistics
	Address       string   `gorm:"type:varchar(200)" json:"address"`
	ContactPerson string   `gorm:"type:varchar(100)" json:"contact_person"`
	ContactPhone  string   `gorm:"type:varchar(20)" json:"contact_phone"`
	ContactEmail  string   `gorm:"type:varchar(100)" json:"contact_email"`
	Capacity      int      `gorm:"not null;default:0" json:"capacity"`     // 可承接的工单数
	CurrentLoad   int      `gorm:"not null;default:0" json:"current_load"` // 已承接的工单数
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Status        string   `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联
	Divisions []Division `gorm:"foreignKey:OrganizationID" json:"divisions,omitempty"`
	Staff     []Staff    `gorm:"foreignKey:OrganizationID" json:"staff,omitempty"`
}

// AvailableCapacity 返回剩余容量
func (o *Organization) AvailableCapacity() int {
	return o.Capacity - o.CurrentLoad
}

// CategoryTags 返回机构类别的能力标签集合
func (o *Organization) CategoryTags() TagSet {
	return ParseTags(o.Category)
}

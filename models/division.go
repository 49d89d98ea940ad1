package models

import "time"

// Division 表示机构下属的分队
type Division struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"type:varchar(100);not null" json:"name"`
	OrganizationID uint   `gorm:"not null" json:"organization_id"`
	Type           string `gorm:"type:varchar(50)" json:"type"` // Medical, Rescue, Logistics, Communication
	Description    string `gorm:"type:text" json:"description"`
	Capacity       int    `gorm:"not null;default:0" json:"capacity"`
	CurrentLoad    int    `gorm:"not null;default:0" json:"current_load"`
	Status         string `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// TypeTags 返回分队类型的能力标签集合
func (d *Division) TypeTags() TagSet {
	return ParseTags(d.Type)
}

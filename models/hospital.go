package models

import "time"

// Hospital 表示医院
type Hospital struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	Name              string  `gorm:"type:varchar(100);not null" json:"name"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Address           string  `gorm:"type:varchar(200)" json:"address"`
	TotalBeds         int     `gorm:"not null;default:0" json:"total_beds"`
	AvailableBeds     int     `gorm:"not null;default:0" json:"available_beds"`
	ICUBeds           int     `gorm:"not null;default:0" json:"icu_beds"`
	AvailableICU      int     `gorm:"not null;default:0" json:"available_icu"`
	ContactPhone      string  `gorm:"type:varchar(20)" json:"contact_phone"`
	OrganizationID    *uint   `json:"organization_id"`
	Specialties       string  `gorm:"type:text" json:"specialties"`        // 逗号分隔的专科列表
	EmergencyServices string  `gorm:"type:text" json:"emergency_services"` // 逗号分隔的急诊服务列表
	Status            string  `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

package models

import "time"

// 人员可用性状态，由分配流程维护（被派遣时置为 Busy）
const (
	StaffAvailable = "Available"
	StaffBusy      = "Busy"
	StaffOffDuty   = "Off-duty"
)

// Staff 表示机构的响应人员
type Staff struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Name            string   `gorm:"type:varchar(100);not null" json:"name"`
	OrganizationID  uint     `gorm:"not null" json:"organization_id"`
	DivisionID      *uint    `json:"division_id"`
	Role            string   `gorm:"type:varchar(50);not null" json:"role"` // Manager, Worker, Specialist, Volunteer
	Skills          string   `gorm:"type:varchar(200)" json:"skills"`       // 逗号分隔的技能标签
	ContactPhone    string   `gorm:"type:varchar(20)" json:"contact_phone"`
	ContactEmail    string   `gorm:"type:varchar(100)" json:"contact_email"`
	Availability    string   `gorm:"type:varchar(20);default:'Available'" json:"availability"`
	CurrentLocation string   `gorm:"type:varchar(200)" json:"current_location"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Status          string   `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// 关联
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Division     *Division     `gorm:"foreignKey:DivisionID" json:"division,omitempty"`
}

// SkillTags 返回人员技能的能力标签集合
func (s *Staff) SkillTags() TagSet {
	return ParseTags(s.Skills)
}

package models

import (
	"time"
)

// 工单状态。状态只能通过 AssignmentService 的状态机流转。
const (
	TicketStatusPending           = "Pending"            // 等待分配
	TicketStatusPendingAssignment = "Pending Assignment" // 已提议，等待机构接受
	TicketStatusInProgress        = "In Progress"        // 处置中
	TicketStatusDone              = "Done"               // 已完成
	TicketStatusCancelled         = "Cancelled"          // 已取消（终态）
)

// 优先级范围 1-5，5 为最高
const (
	PriorityMin = 1
	PriorityMax = 5
)

// EmergencyTicket 表示一条求救工单
type EmergencyTicket struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"type:varchar(64);unique" json:"external_id"` // 外部系统（上报渠道）的ID
	People     int    `gorm:"not null" json:"people"`                     // 受影响人数，>=1
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Text       string `gorm:"type:text" json:"text"`             // 求救描述
	Place      string `gorm:"type:varchar(200)" json:"place"`    // 地点名称
	Category   string `gorm:"type:varchar(100)" json:"category"` // 求救类别
	Priority   int    `gorm:"not null;default:1" json:"priority"`
	Status     string `gorm:"type:varchar(30);not null;default:'Pending'" json:"status"`
	Notes      string `gorm:"type:text" json:"notes"`

	// 分配字段，仅在 Pending Assignment / In Progress / Done 状态下非空
	AssignedOrganizationID *uint `json:"assigned_organization"`
	AssignedStaffID        *uint `json:"assigned_to"`
	AssignedDivisionID     *uint `json:"assigned_division"`

	// ProposalEpoch 每次提议递增，用于识别过期的接受窗口定时器
	ProposalEpoch int `gorm:"not null;default:0" json:"proposal_epoch"`
	// ReassignCount 连续超时重新分配的次数，用于升级策略
	ReassignCount int `gorm:"not null;default:0" json:"reassign_count"`

	AssignmentTime      *time.Time `json:"assignment_time"`
	AcceptedAt          *time.Time `json:"accepted_at"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
	ActualCompletion    *time.Time `json:"actual_completion"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	AssignedOrganization *Organization `gorm:"foreignKey:AssignedOrganizationID" json:"organization,omitempty"`
	AssignedStaff        *Staff        `gorm:"foreignKey:AssignedStaffID" json:"staff,omitempty"`
	AssignedDivision     *Division     `gorm:"foreignKey:AssignedDivisionID" json:"division,omitempty"`
}

// IsTerminal 判断工单是否处于终态
func (t *EmergencyTicket) IsTerminal() bool {
	return t.Status == TicketStatusDone || t.Status == TicketStatusCancelled
}

// ClassifyPriority 根据类别和受影响人数计算优先级
func ClassifyPriority(category string, people int) int {
	tags := ParseTags(category)
	switch {
	case tags.containsAny("needs rescue", "medical emergency", "fire"):
		return 5
	case tags.containsAny("food", "water", "shelter"):
		return 3
	case people > 10:
		return 4
	default:
		return 1
	}
}

// containsAny 判断集合是否含有给定标签之一（精确匹配）
func (s TagSet) containsAny(targets ...string) bool {
	for _, tag := range s {
		for _, target := range targets {
			if tag == target {
				return true
			}
		}
	}
	return false
}

package models

import "time"

// TicketUpdate 表示工单字段变更的历史记录。
// 只追加，写入后不再修改或删除。
type TicketUpdate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TicketID   uint      `gorm:"not null;index" json:"ticket_id"`
	UpdatedBy  string    `gorm:"type:varchar(100);not null" json:"updated_by"` // 操作者（操作员用户名或 "system"）
	FieldName  string    `gorm:"type:varchar(100);not null" json:"field_name"`
	OldValue   string    `gorm:"type:text" json:"old_value"`
	NewValue   string    `gorm:"type:text" json:"new_value"`
	Notes      string    `gorm:"type:text" json:"notes"`
	UpdateTime time.Time `gorm:"not null;index" json:"update_time"`

	// 关联
	Ticket *EmergencyTicket `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
}

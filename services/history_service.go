package services

import (
	"fmt"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceHistoryService defines the change history service interface
type InterfaceHistoryService interface {
	Append(tx *gorm.DB, ticketID uint, actor, field, oldValue, newValue, notes string) error
	GetTicketHistory(ticketID uint) ([]models.TicketUpdate, error)
	GetAuditTrail(ticketID uint) ([]models.TicketUpdate, error)
}

// HistoryService 维护工单的只追加变更历史
type HistoryService struct {
	DB     *gorm.DB
	Config *config.Config
	Clock  Clock
}

// NewHistoryService 创建一个新的变更历史服务
func NewHistoryService(db *gorm.DB, cfg *config.Config, clock Clock) InterfaceHistoryService {
	return &HistoryService{
		DB:     db,
		Config: cfg,
		Clock:  clock,
	}
}

// Append 追加一条变更记录。tx 非空时参与调用方的事务。
// 记录写入后不再修改或删除。
func (s *HistoryService) Append(tx *gorm.DB, ticketID uint, actor, field, oldValue, newValue, notes string) error {
	db := tx
	if db == nil {
		db = s.DB
	}

	record := models.TicketUpdate{
		TicketID:   ticketID,
		UpdatedBy:  actor,
		FieldName:  field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Notes:      notes,
		UpdateTime: s.Clock.Now(),
	}

	if err := db.Create(&record).Error; err != nil {
		return fmt.Errorf("%w: append ticket update: %v", ErrStorage, err)
	}
	return nil
}

// GetTicketHistory 按时间倒序返回工单的变更历史（用于展示）
func (s *HistoryService) GetTicketHistory(ticketID uint) ([]models.TicketUpdate, error) {
	var updates []models.TicketUpdate
	if err := s.DB.Where("ticket_id = ?", ticketID).
		Order("update_time DESC, id DESC").
		Find(&updates).Error; err != nil {
		return nil, fmt.Errorf("%w: query ticket history: %v", ErrStorage, err)
	}
	return updates, nil
}

// GetAuditTrail 按时间正序返回工单的变更历史（用于审计回放）
func (s *HistoryService) GetAuditTrail(ticketID uint) ([]models.TicketUpdate, error) {
	var updates []models.TicketUpdate
	if err := s.DB.Where("ticket_id = ?", ticketID).
		Order("update_time ASC, id ASC").
		Find(&updates).Error; err != nil {
		return nil, fmt.Errorf("%w: query ticket audit trail: %v", ErrStorage, err)
	}
	return updates, nil
}

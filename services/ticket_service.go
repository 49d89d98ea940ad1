package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"resq-http-service/config"
	"resq-http-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTicketRequest 创建工单的入参
type CreateTicketRequest struct {
	ExternalID string  `json:"external_id"`
	People     int     `json:"people" binding:"required"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Text       string  `json:"text"`
	Place      string  `json:"place"`
	Category   string  `json:"category" binding:"required"`
}

// TicketFilter 工单列表的过滤条件
type TicketFilter struct {
	Status   string
	Category string
	Region   string // Western / Central / Vidarbha，按经度带过滤
	Priority int
	Limit    int
	Offset   int
}

// InterfaceTicketService defines the ticket service interface
type InterfaceTicketService interface {
	CreateTicket(req *CreateTicketRequest) (*models.EmergencyTicket, error)
	GetTickets(filter TicketFilter) ([]models.EmergencyTicket, int64, error)
	GetTicketByID(id uint) (*models.EmergencyTicket, error)
	GetTicketsInBounds(north, south, east, west float64) ([]models.EmergencyTicket, error)
	UpdateTicket(id uint, actor string, updates map[string]interface{}) (*models.EmergencyTicket, error)
	DeleteTicket(id uint) error
}

// TicketService 提供工单的创建、查询和人工编辑
type TicketService struct {
	DB      *gorm.DB
	Config  *config.Config
	Geo     *GeoService
	History InterfaceHistoryService
	Clock   Clock
}

// NewTicketService 创建一个新的工单服务
func NewTicketService(db *gorm.DB, cfg *config.Config, geo *GeoService, history InterfaceHistoryService, clock Clock) InterfaceTicketService {
	return &TicketService{
		DB:      db,
		Config:  cfg,
		Geo:     geo,
		History: history,
		Clock:   clock,
	}
}

// CreateTicket 创建新工单，按类别和受影响人数计算优先级，初始状态 Pending
func (s *TicketService) CreateTicket(req *CreateTicketRequest) (*models.EmergencyTicket, error) {
	if req.People < 1 {
		return nil, fmt.Errorf("%w: people affected must be >= 1", ErrValidation)
	}
	if err := s.Geo.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	externalID := req.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	}

	ticket := models.EmergencyTicket{
		ExternalID: externalID,
		People:     req.People,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Text:       req.Text,
		Place:      req.Place,
		Category:   req.Category,
		Priority:   models.ClassifyPriority(req.Category, req.People),
		Status:     models.TicketStatusPending,
	}

	if err := s.DB.Create(&ticket).Error; err != nil {
		return nil, fmt.Errorf("%w: create ticket: %v", ErrStorage, err)
	}

	return &ticket, nil
}

// GetTickets 查询工单列表，按优先级和创建时间排序，支持过滤和分页
func (s *TicketService) GetTickets(filter TicketFilter) ([]models.EmergencyTicket, int64, error) {
	query := s.DB.Model(&models.EmergencyTicket{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category LIKE ?", "%"+filter.Category+"%")
	}
	if filter.Priority != 0 {
		query = query.Where("priority = ?", filter.Priority)
	}

	// 区域按经度带过滤
	switch filter.Region {
	case "western", "Western":
		query = query.Where("longitude >= ? AND longitude <= ?", 72.0, 75.0)
	case "central", "Central":
		query = query.Where("longitude >= ? AND longitude <= ?", 75.0, 78.0)
	case "vidarbha", "Vidarbha":
		query = query.Where("longitude >= ? AND longitude <= ?", 78.0, 81.0)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count tickets: %v", ErrStorage, err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var tickets []models.EmergencyTicket
	if err := query.Order("priority DESC, created_at DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&tickets).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query tickets: %v", ErrStorage, err)
	}

	return tickets, total, nil
}

// GetTicketByID 根据ID获取工单
func (s *TicketService) GetTicketByID(id uint) (*models.EmergencyTicket, error) {
	var ticket models.EmergencyTicket
	if err := s.DB.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: ticket %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query ticket: %v", ErrStorage, err)
	}
	return &ticket, nil
}

// GetTicketsInBounds 查询给定地图边界内的未完结工单（用于地图展示）
func (s *TicketService) GetTicketsInBounds(north, south, east, west float64) ([]models.EmergencyTicket, error) {
	var tickets []models.EmergencyTicket
	if err := s.DB.
		Where("status NOT IN ?", []string{models.TicketStatusDone, models.TicketStatusCancelled}).
		Where("latitude <= ? AND latitude >= ?", north, south).
		Where("longitude <= ? AND longitude >= ?", east, west).
		Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("%w: query tickets in bounds: %v", ErrStorage, err)
	}
	return tickets, nil
}

// 人工编辑允许修改的字段
var editableTicketFields = map[string]bool{
	"status":                   true,
	"notes":                    true,
	"priority":                 true,
	"assigned_organization_id": true,
	"assigned_staff_id":        true,
	"assigned_division_id":     true,
	"estimated_completion":     true,
}

// UpdateTicket 人工编辑工单，非终态下允许修改状态、备注和分配覆盖。
// 每个变更的字段都镜像写入变更历史。
func (s *TicketService) UpdateTicket(id uint, actor string, updates map[string]interface{}) (*models.EmergencyTicket, error) {
	lock := lockTicket(id)
	lock.Lock()
	defer lock.Unlock()

	ticket, err := s.GetTicketByID(id)
	if err != nil {
		return nil, err
	}

	if ticket.IsTerminal() {
		return nil, fmt.Errorf("%w: ticket %d is %s", ErrInvalidState, id, ticket.Status)
	}

	applied := map[string]interface{}{}
	for field, value := range updates {
		if !editableTicketFields[field] {
			continue
		}
		if field == "status" {
			status, ok := value.(string)
			if !ok || !isKnownStatus(status) {
				return nil, fmt.Errorf("%w: unknown status %v", ErrValidation, value)
			}
		}
		applied[field] = value
	}
	if len(applied) == 0 {
		return ticket, nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for field, value := range applied {
			oldValue := ticketFieldValue(ticket, field)
			newValue := stringifyFieldValue(value)
			if oldValue == newValue {
				continue
			}
			if err := s.History.Append(tx, id, actor, field, oldValue, newValue, "manual edit"); err != nil {
				return err
			}
		}
		applied["updated_at"] = s.Clock.Now()
		if err := tx.Model(&models.EmergencyTicket{}).Where("id = ?", id).Updates(applied).Error; err != nil {
			return fmt.Errorf("%w: update ticket: %v", ErrStorage, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTicketByID(id)
}

// DeleteTicket 删除工单（历史记录保留）
func (s *TicketService) DeleteTicket(id uint) error {
	result := s.DB.Delete(&models.EmergencyTicket{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: delete ticket: %v", ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: ticket %d", ErrNotFound, id)
	}
	return nil
}

func isKnownStatus(status string) bool {
	switch status {
	case models.TicketStatusPending, models.TicketStatusPendingAssignment,
		models.TicketStatusInProgress, models.TicketStatusDone, models.TicketStatusCancelled:
		return true
	}
	return false
}

// ticketFieldValue 取工单字段的当前值（历史记录用的文本形式）
func ticketFieldValue(t *models.EmergencyTicket, field string) string {
	switch field {
	case "status":
		return t.Status
	case "notes":
		return t.Notes
	case "priority":
		return strconv.Itoa(t.Priority)
	case "assigned_organization_id":
		return uintPtrString(t.AssignedOrganizationID)
	case "assigned_staff_id":
		return uintPtrString(t.AssignedStaffID)
	case "assigned_division_id":
		return uintPtrString(t.AssignedDivisionID)
	case "estimated_completion":
		if t.EstimatedCompletion == nil {
			return ""
		}
		return t.EstimatedCompletion.Format(time.RFC3339)
	}
	return ""
}

func stringifyFieldValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case *uint:
		return uintPtrString(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func uintPtrString(v *uint) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}

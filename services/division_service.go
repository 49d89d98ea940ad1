package services

import (
	"errors"
	"fmt"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceDivisionService 定义分队服务接口
type InterfaceDivisionService interface {
	GetAllDivisions(page, pageSize int, orgID uint) ([]models.Division, int64, error)
	GetDivisionByID(id uint) (*models.Division, error)
	CreateDivision(division *models.Division) error
	UpdateDivision(id uint, updates map[string]interface{}) (*models.Division, error)
	DeleteDivision(id uint) error
}

// DivisionService 提供分队相关的服务
type DivisionService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewDivisionService 创建一个新的分队服务
func NewDivisionService(db *gorm.DB, cfg *config.Config) InterfaceDivisionService {
	return &DivisionService{
		DB:     db,
		Config: cfg,
	}
}

// 1. GetAllDivisions 获取分队列表，支持分页和按机构过滤
func (s *DivisionService) GetAllDivisions(page, pageSize int, orgID uint) ([]models.Division, int64, error) {
	query := s.DB.Model(&models.Division{})
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count divisions: %v", ErrStorage, err)
	}

	var divisions []models.Division
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&divisions).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query divisions: %v", ErrStorage, err)
	}

	return divisions, total, nil
}

// 2. GetDivisionByID 根据ID获取分队
func (s *DivisionService) GetDivisionByID(id uint) (*models.Division, error) {
	var division models.Division
	if err := s.DB.First(&division, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: division %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query division: %v", ErrStorage, err)
	}
	return &division, nil
}

// 3. CreateDivision 创建新分队
func (s *DivisionService) CreateDivision(division *models.Division) error {
	if division.Name == "" {
		return fmt.Errorf("%w: division name is required", ErrValidation)
	}
	if division.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrValidation)
	}

	// 验证所属机构存在
	var count int64
	if err := s.DB.Model(&models.Organization{}).Where("id = ?", division.OrganizationID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: check organization: %v", ErrStorage, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: organization %d", ErrNotFound, division.OrganizationID)
	}

	if division.Status == "" {
		division.Status = "Active"
	}

	if err := s.DB.Create(division).Error; err != nil {
		return fmt.Errorf("%w: create division: %v", ErrStorage, err)
	}
	return nil
}

// 4. UpdateDivision 更新分队信息
func (s *DivisionService) UpdateDivision(id uint, updates map[string]interface{}) (*models.Division, error) {
	division, err := s.GetDivisionByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(division).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update division: %v", ErrStorage, err)
	}

	return s.GetDivisionByID(id)
}

// 5. DeleteDivision 删除分队
func (s *DivisionService) DeleteDivision(id uint) error {
	division, err := s.GetDivisionByID(id)
	if err != nil {
		return err
	}

	// 有未完结工单的分队不能删除
	var ticketCount int64
	if err := s.DB.Model(&models.EmergencyTicket{}).
		Where("assigned_division_id = ? AND status IN ?", id,
			[]string{models.TicketStatusPendingAssignment, models.TicketStatusInProgress}).
		Count(&ticketCount).Error; err != nil {
		return fmt.Errorf("%w: check assigned tickets: %v", ErrStorage, err)
	}
	if ticketCount > 0 {
		return fmt.Errorf("%w: division %d has active tickets", ErrInvalidState, id)
	}

	if err := s.DB.Delete(division).Error; err != nil {
		return fmt.Errorf("%w: delete division: %v", ErrStorage, err)
	}
	return nil
}

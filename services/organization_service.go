package services

import (
	"errors"
	"fmt"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceOrganizationService 定义机构服务接口
type InterfaceOrganizationService interface {
	GetAllOrganizations(page, pageSize int) ([]models.Organization, int64, error)
	GetOrganizationByID(id uint) (*models.Organization, error)
	CreateOrganization(org *models.Organization) error
	UpdateOrganization(id uint, updates map[string]interface{}) (*models.Organization, error)
	DeleteOrganization(id uint) error
	GetOrganizationDivisions(orgID uint) ([]models.Division, error)
	GetOrganizationStaff(orgID uint) ([]models.Staff, error)
	GetOrganizationTickets(orgID uint, status string) ([]models.EmergencyTicket, error)
}

// OrganizationService 提供机构相关的服务
type OrganizationService struct {
	DB     *gorm.DB
	Config *config.Config
	Geo    *GeoService
}

// NewOrganizationService 创建一个新的机构服务
func NewOrganizationService(db *gorm.DB, cfg *config.Config, geo *GeoService) InterfaceOrganizationService {
	return &OrganizationService{
		DB:     db,
		Config: cfg,
		Geo:    geo,
	}
}

// 1. GetAllOrganizations 获取所有机构列表，支持分页
func (s *OrganizationService) GetAllOrganizations(page, pageSize int) ([]models.Organization, int64, error) {
	var orgs []models.Organization
	var total int64

	// 获取总数
	if err := s.DB.Model(&models.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count organizations: %v", ErrStorage, err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := s.DB.Limit(pageSize).Offset(offset).Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query organizations: %v", ErrStorage, err)
	}

	return orgs, total, nil
}

// 2. GetOrganizationByID 根据ID获取机构
func (s *OrganizationService) GetOrganizationByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := s.DB.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: organization %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query organization: %v", ErrStorage, err)
	}
	return &org, nil
}

// 3. CreateOrganization 创建新机构
func (s *OrganizationService) CreateOrganization(org *models.Organization) error {
	if org.Name == "" {
		return fmt.Errorf("%w: organization name is required", ErrValidation)
	}
	if org.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrValidation)
	}
	if org.Latitude != nil && org.Longitude != nil {
		if err := s.Geo.ValidateCoordinates(*org.Latitude, *org.Longitude); err != nil {
			return err
		}
	}

	// 验证机构名称唯一性
	var count int64
	if err := s.DB.Model(&models.Organization{}).Where("name = ?", org.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: check organization name: %v", ErrStorage, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: organization name %q already exists", ErrValidation, org.Name)
	}

	// 设置默认状态
	if org.Status == "" {
		org.Status = "Active"
	}

	if err := s.DB.Create(org).Error; err != nil {
		return fmt.Errorf("%w: create organization: %v", ErrStorage, err)
	}
	return nil
}

// 4. UpdateOrganization 更新机构信息
func (s *OrganizationService) UpdateOrganization(id uint, updates map[string]interface{}) (*models.Organization, error) {
	org, err := s.GetOrganizationByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新机构名称，需要检查唯一性
	if name, ok := updates["name"].(string); ok && name != org.Name {
		var count int64
		if err := s.DB.Model(&models.Organization{}).Where("name = ? AND id != ?", name, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("%w: check organization name: %v", ErrStorage, err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: organization name %q already exists", ErrValidation, name)
		}
	}

	if err := s.DB.Model(org).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update organization: %v", ErrStorage, err)
	}

	// 重新获取更新后的机构信息
	return s.GetOrganizationByID(id)
}

// 5. DeleteOrganization 删除机构
func (s *OrganizationService) DeleteOrganization(id uint) error {
	org, err := s.GetOrganizationByID(id)
	if err != nil {
		return err
	}

	// 有未完结工单的机构不能删除
	var ticketCount int64
	if err := s.DB.Model(&models.EmergencyTicket{}).
		Where("assigned_organization_id = ? AND status IN ?", id,
			[]string{models.TicketStatusPendingAssignment, models.TicketStatusInProgress}).
		Count(&ticketCount).Error; err != nil {
		return fmt.Errorf("%w: check assigned tickets: %v", ErrStorage, err)
	}
	if ticketCount > 0 {
		return fmt.Errorf("%w: organization %d has active tickets", ErrInvalidState, id)
	}

	if err := s.DB.Delete(org).Error; err != nil {
		return fmt.Errorf("%w: delete organization: %v", ErrStorage, err)
	}
	return nil
}

// 6. GetOrganizationDivisions 获取机构下属的分队
func (s *OrganizationService) GetOrganizationDivisions(orgID uint) ([]models.Division, error) {
	if _, err := s.GetOrganizationByID(orgID); err != nil {
		return nil, err
	}

	var divisions []models.Division
	if err := s.DB.Where("organization_id = ?", orgID).Find(&divisions).Error; err != nil {
		return nil, fmt.Errorf("%w: query divisions: %v", ErrStorage, err)
	}

	return divisions, nil
}

// 7. GetOrganizationStaff 获取机构的人员
func (s *OrganizationService) GetOrganizationStaff(orgID uint) ([]models.Staff, error) {
	if _, err := s.GetOrganizationByID(orgID); err != nil {
		return nil, err
	}

	var staff []models.Staff
	if err := s.DB.Where("organization_id = ?", orgID).Find(&staff).Error; err != nil {
		return nil, fmt.Errorf("%w: query staff: %v", ErrStorage, err)
	}

	return staff, nil
}

// 8. GetOrganizationTickets 获取分配给机构的工单，可按状态过滤
func (s *OrganizationService) GetOrganizationTickets(orgID uint, status string) ([]models.EmergencyTicket, error) {
	if _, err := s.GetOrganizationByID(orgID); err != nil {
		return nil, err
	}

	query := s.DB.Where("assigned_organization_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.EmergencyTicket
	if err := query.Order("priority DESC, created_at ASC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("%w: query tickets: %v", ErrStorage, err)
	}

	return tickets, nil
}

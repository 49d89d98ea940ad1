package services

import (
	"errors"
	"fmt"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceStaffService 定义人员服务接口
type InterfaceStaffService interface {
	GetAllStaff(page, pageSize int, orgID uint, availability string) ([]models.Staff, int64, error)
	GetStaffByID(id uint) (*models.Staff, error)
	CreateStaff(staff *models.Staff) error
	UpdateStaff(id uint, updates map[string]interface{}) (*models.Staff, error)
	DeleteStaff(id uint) error
	UpdateAvailability(id uint, availability string) (*models.Staff, error)
}

// StaffService 提供响应人员相关的服务
type StaffService struct {
	DB     *gorm.DB
	Config *config.Config
	Geo    *GeoService
}

// NewStaffService 创建一个新的人员服务
func NewStaffService(db *gorm.DB, cfg *config.Config, geo *GeoService) InterfaceStaffService {
	return &StaffService{
		DB:     db,
		Config: cfg,
		Geo:    geo,
	}
}

// 1. GetAllStaff 获取人员列表，支持分页和过滤
func (s *StaffService) GetAllStaff(page, pageSize int, orgID uint, availability string) ([]models.Staff, int64, error) {
	query := s.DB.Model(&models.Staff{})
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}
	if availability != "" {
		query = query.Where("availability = ?", availability)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count staff: %v", ErrStorage, err)
	}

	var staff []models.Staff
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&staff).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query staff: %v", ErrStorage, err)
	}

	return staff, total, nil
}

// 2. GetStaffByID 根据ID获取人员
func (s *StaffService) GetStaffByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := s.DB.First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: staff %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query staff: %v", ErrStorage, err)
	}
	return &staff, nil
}

// 3. CreateStaff 创建新人员
func (s *StaffService) CreateStaff(staff *models.Staff) error {
	if staff.Name == "" {
		return fmt.Errorf("%w: staff name is required", ErrValidation)
	}
	if staff.Latitude != nil && staff.Longitude != nil {
		if err := s.Geo.ValidateCoordinates(*staff.Latitude, *staff.Longitude); err != nil {
			return err
		}
	}

	// 验证所属机构存在
	var count int64
	if err := s.DB.Model(&models.Organization{}).Where("id = ?", staff.OrganizationID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: check organization: %v", ErrStorage, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: organization %d", ErrNotFound, staff.OrganizationID)
	}

	if staff.Availability == "" {
		staff.Availability = models.StaffAvailable
	}
	if staff.Status == "" {
		staff.Status = "Active"
	}

	if err := s.DB.Create(staff).Error; err != nil {
		return fmt.Errorf("%w: create staff: %v", ErrStorage, err)
	}
	return nil
}

// 4. UpdateStaff 更新人员信息
func (s *StaffService) UpdateStaff(id uint, updates map[string]interface{}) (*models.Staff, error) {
	staff, err := s.GetStaffByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(staff).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update staff: %v", ErrStorage, err)
	}

	return s.GetStaffByID(id)
}

// 5. DeleteStaff 删除人员
func (s *StaffService) DeleteStaff(id uint) error {
	staff, err := s.GetStaffByID(id)
	if err != nil {
		return err
	}

	// 正在执行任务的人员不能删除
	if staff.Availability == models.StaffBusy {
		return fmt.Errorf("%w: staff %d is responding to a ticket", ErrInvalidState, id)
	}

	if err := s.DB.Delete(staff).Error; err != nil {
		return fmt.Errorf("%w: delete staff: %v", ErrStorage, err)
	}
	return nil
}

// 6. UpdateAvailability 更新人员可用性
func (s *StaffService) UpdateAvailability(id uint, availability string) (*models.Staff, error) {
	switch availability {
	case models.StaffAvailable, models.StaffBusy, models.StaffOffDuty:
	default:
		return nil, fmt.Errorf("%w: unknown availability %q", ErrValidation, availability)
	}

	return s.UpdateStaff(id, map[string]interface{}{"availability": availability})
}

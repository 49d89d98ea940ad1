package services

import (
	"errors"
	"fmt"

	"resq-http-service/config"
	"resq-http-service/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminService 提供调度管理员相关的服务
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService 创建一个新的管理员服务
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// GetAllAdmins 获取所有管理员，支持分页
func (s *AdminService) GetAllAdmins(page, pageSize int) ([]models.Admin, int64, error) {
	var admins []models.Admin
	var total int64

	if err := s.DB.Model(&models.Admin{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count admins: %v", ErrStorage, err)
	}

	offset := (page - 1) * pageSize
	if err := s.DB.Limit(pageSize).Offset(offset).Find(&admins).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query admins: %v", ErrStorage, err)
	}

	return admins, total, nil
}

// GetAdminByID 根据ID获取管理员
func (s *AdminService) GetAdminByID(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query admin: %v", ErrStorage, err)
	}
	return &admin, nil
}

// Authenticate 校验用户名和密码，成功返回管理员
func (s *AdminService) Authenticate(username, password string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown username", ErrValidation)
		}
		return nil, fmt.Errorf("%w: query admin: %v", ErrStorage, err)
	}

	if !admin.CheckPassword(password) {
		return nil, fmt.Errorf("%w: wrong password", ErrValidation)
	}

	return &admin, nil
}

// CreateAdmin 创建新管理员
func (s *AdminService) CreateAdmin(admin *models.Admin) error {
	// 验证用户名唯一性
	var count int64
	if err := s.DB.Model(&models.Admin{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: check username: %v", ErrStorage, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: username %q already exists", ErrValidation, admin.Username)
	}

	// 密码哈希由 Admin 的 BeforeSave 钩子处理
	if err := s.DB.Create(admin).Error; err != nil {
		return fmt.Errorf("%w: create admin: %v", ErrStorage, err)
	}
	return nil
}

// UpdateAdmin 更新管理员信息
func (s *AdminService) UpdateAdmin(id uint, updates map[string]interface{}) (*models.Admin, error) {
	admin, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新用户名，需要检查唯一性
	if username, ok := updates["username"].(string); ok && username != admin.Username {
		var count int64
		if err := s.DB.Model(&models.Admin{}).Where("username = ? AND id != ?", username, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("%w: check username: %v", ErrStorage, err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: username %q already exists", ErrValidation, username)
		}
	}

	// 如果更新密码，需要进行哈希处理；map更新不经过BeforeSave钩子
	if password, ok := updates["password"].(string); ok {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%w: hash password: %v", ErrStorage, err)
		}
		updates["password"] = string(hashed)
	}

	if err := s.DB.Model(admin).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update admin: %v", ErrStorage, err)
	}

	return s.GetAdminByID(id)
}

// DeleteAdmin 删除管理员
func (s *AdminService) DeleteAdmin(id uint) error {
	// 确保系统中至少有一个管理员
	var count int64
	if err := s.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: count admins: %v", ErrStorage, err)
	}
	if count <= 1 {
		return fmt.Errorf("%w: cannot delete the last admin", ErrInvalidState)
	}

	admin, err := s.GetAdminByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(admin).Error; err != nil {
		return fmt.Errorf("%w: delete admin: %v", ErrStorage, err)
	}
	return nil
}

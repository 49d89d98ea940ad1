package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceResourceService 定义物资中心服务接口
type InterfaceResourceService interface {
	GetAllResourceCenters(page, pageSize int, resourceType string) ([]models.ResourceCenter, int64, error)
	GetResourceCenterByID(id uint) (*models.ResourceCenter, error)
	CreateResourceCenter(center *models.ResourceCenter) error
	UpdateResourceCenter(id uint, updates map[string]interface{}) (*models.ResourceCenter, error)
	DeleteResourceCenter(id uint) error
	AdjustStock(id uint, delta int) (*models.ResourceCenter, error)
	FindNearestWithStock(lat, lon float64, resourceType string, limit int) ([]ResourceCenterDistance, error)
}

// ResourceCenterDistance 带距离的物资中心查询结果
type ResourceCenterDistance struct {
	Center     models.ResourceCenter `json:"center"`
	DistanceKm float64               `json:"distance_km"`
}

// ResourceService 提供物资中心相关的服务
type ResourceService struct {
	DB     *gorm.DB
	Config *config.Config
	Geo    *GeoService
}

// NewResourceService 创建一个新的物资中心服务
func NewResourceService(db *gorm.DB, cfg *config.Config, geo *GeoService) InterfaceResourceService {
	return &ResourceService{
		DB:     db,
		Config: cfg,
		Geo:    geo,
	}
}

// 1. GetAllResourceCenters 获取物资中心列表，支持分页和类型过滤
func (s *ResourceService) GetAllResourceCenters(page, pageSize int, resourceType string) ([]models.ResourceCenter, int64, error) {
	query := s.DB.Model(&models.ResourceCenter{})
	if resourceType != "" {
		query = query.Where("type LIKE ?", "%"+strings.ToLower(resourceType)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count resource centers: %v", ErrStorage, err)
	}

	var centers []models.ResourceCenter
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&centers).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query resource centers: %v", ErrStorage, err)
	}

	return centers, total, nil
}

// 2. GetResourceCenterByID 根据ID获取物资中心
func (s *ResourceService) GetResourceCenterByID(id uint) (*models.ResourceCenter, error) {
	var center models.ResourceCenter
	if err := s.DB.First(&center, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resource center %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query resource center: %v", ErrStorage, err)
	}
	return &center, nil
}

// 3. CreateResourceCenter 创建新物资中心
func (s *ResourceService) CreateResourceCenter(center *models.ResourceCenter) error {
	if center.Name == "" {
		return fmt.Errorf("%w: resource center name is required", ErrValidation)
	}
	if center.Capacity < 0 || center.CurrentStock < 0 || center.CurrentStock > center.Capacity {
		return fmt.Errorf("%w: inconsistent stock counts", ErrValidation)
	}
	if err := s.Geo.ValidateCoordinates(center.Latitude, center.Longitude); err != nil {
		return err
	}

	if center.Status == "" {
		center.Status = "Active"
	}

	if err := s.DB.Create(center).Error; err != nil {
		return fmt.Errorf("%w: create resource center: %v", ErrStorage, err)
	}
	return nil
}

// 4. UpdateResourceCenter 更新物资中心信息
func (s *ResourceService) UpdateResourceCenter(id uint, updates map[string]interface{}) (*models.ResourceCenter, error) {
	center, err := s.GetResourceCenterByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(center).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update resource center: %v", ErrStorage, err)
	}

	return s.GetResourceCenterByID(id)
}

// 5. DeleteResourceCenter 删除物资中心
func (s *ResourceService) DeleteResourceCenter(id uint) error {
	center, err := s.GetResourceCenterByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(center).Error; err != nil {
		return fmt.Errorf("%w: delete resource center: %v", ErrStorage, err)
	}
	return nil
}

// 6. AdjustStock 入库/出库，delta 为库存变化
func (s *ResourceService) AdjustStock(id uint, delta int) (*models.ResourceCenter, error) {
	center, err := s.GetResourceCenterByID(id)
	if err != nil {
		return nil, err
	}

	next := center.CurrentStock + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: stock would drop below zero", ErrValidation)
	}
	if next > center.Capacity {
		return nil, fmt.Errorf("%w: resource center %d is full (capacity %d)", ErrValidation, id, center.Capacity)
	}

	return s.UpdateResourceCenter(id, map[string]interface{}{"current_stock": next})
}

// 7. FindNearestWithStock 查找距离指定坐标最近的有库存的物资中心
func (s *ResourceService) FindNearestWithStock(lat, lon float64, resourceType string, limit int) ([]ResourceCenterDistance, error) {
	if err := s.Geo.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	query := s.DB.Where("status = ? AND current_stock > 0", "Active")
	if resourceType != "" {
		query = query.Where("type LIKE ?", "%"+strings.ToLower(resourceType)+"%")
	}

	var centers []models.ResourceCenter
	if err := query.Find(&centers).Error; err != nil {
		return nil, fmt.Errorf("%w: query resource centers: %v", ErrStorage, err)
	}

	results := make([]ResourceCenterDistance, 0, len(centers))
	for _, center := range centers {
		distance, err := s.Geo.Distance(lat, lon, center.Latitude, center.Longitude)
		if err != nil {
			continue
		}
		results = append(results, ResourceCenterDistance{Center: center, DistanceKm: distance})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

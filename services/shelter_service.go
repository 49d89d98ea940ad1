package services

import (
	"errors"
	"fmt"
	"sort"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceShelterService 定义避难所服务接口
type InterfaceShelterService interface {
	GetAllShelters(page, pageSize int, status string) ([]models.Shelter, int64, error)
	GetShelterByID(id uint) (*models.Shelter, error)
	CreateShelter(shelter *models.Shelter) error
	UpdateShelter(id uint, updates map[string]interface{}) (*models.Shelter, error)
	DeleteShelter(id uint) error
	UpdateOccupancy(id uint, delta int) (*models.Shelter, error)
	FindNearest(lat, lon float64, limit int) ([]ShelterDistance, error)
}

// ShelterDistance 带距离的避难所查询结果
type ShelterDistance struct {
	Shelter    models.Shelter `json:"shelter"`
	DistanceKm float64        `json:"distance_km"`
}

// ShelterService 提供避难所相关的服务
type ShelterService struct {
	DB     *gorm.DB
	Config *config.Config
	Geo    *GeoService
}

// NewShelterService 创建一个新的避难所服务
func NewShelterService(db *gorm.DB, cfg *config.Config, geo *GeoService) InterfaceShelterService {
	return &ShelterService{
		DB:     db,
		Config: cfg,
		Geo:    geo,
	}
}

// 1. GetAllShelters 获取避难所列表，支持分页和状态过滤
func (s *ShelterService) GetAllShelters(page, pageSize int, status string) ([]models.Shelter, int64, error) {
	query := s.DB.Model(&models.Shelter{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count shelters: %v", ErrStorage, err)
	}

	var shelters []models.Shelter
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&shelters).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query shelters: %v", ErrStorage, err)
	}

	return shelters, total, nil
}

// 2. GetShelterByID 根据ID获取避难所
func (s *ShelterService) GetShelterByID(id uint) (*models.Shelter, error) {
	var shelter models.Shelter
	if err := s.DB.First(&shelter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shelter %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query shelter: %v", ErrStorage, err)
	}
	return &shelter, nil
}

// 3. CreateShelter 创建新避难所
func (s *ShelterService) CreateShelter(shelter *models.Shelter) error {
	if shelter.Name == "" {
		return fmt.Errorf("%w: shelter name is required", ErrValidation)
	}
	if shelter.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrValidation)
	}
	if err := s.Geo.ValidateCoordinates(shelter.Latitude, shelter.Longitude); err != nil {
		return err
	}

	if shelter.Status == "" {
		shelter.Status = "Active"
	}

	if err := s.DB.Create(shelter).Error; err != nil {
		return fmt.Errorf("%w: create shelter: %v", ErrStorage, err)
	}
	return nil
}

// 4. UpdateShelter 更新避难所信息
func (s *ShelterService) UpdateShelter(id uint, updates map[string]interface{}) (*models.Shelter, error) {
	shelter, err := s.GetShelterByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(shelter).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update shelter: %v", ErrStorage, err)
	}

	return s.GetShelterByID(id)
}

// 5. DeleteShelter 删除避难所
func (s *ShelterService) DeleteShelter(id uint) error {
	shelter, err := s.GetShelterByID(id)
	if err != nil {
		return err
	}

	if shelter.CurrentOccupancy > 0 {
		return fmt.Errorf("%w: shelter %d is currently occupied", ErrInvalidState, id)
	}

	if err := s.DB.Delete(shelter).Error; err != nil {
		return fmt.Errorf("%w: delete shelter: %v", ErrStorage, err)
	}
	return nil
}

// 6. UpdateOccupancy 入住/离开，delta 为入住人数变化
func (s *ShelterService) UpdateOccupancy(id uint, delta int) (*models.Shelter, error) {
	shelter, err := s.GetShelterByID(id)
	if err != nil {
		return nil, err
	}

	next := shelter.CurrentOccupancy + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: occupancy would drop below zero", ErrValidation)
	}
	if next > shelter.Capacity {
		return nil, fmt.Errorf("%w: shelter %d is full (capacity %d)", ErrValidation, id, shelter.Capacity)
	}

	return s.UpdateShelter(id, map[string]interface{}{"current_occupancy": next})
}

// 7. FindNearest 查找距离指定坐标最近的有空位的避难所
func (s *ShelterService) FindNearest(lat, lon float64, limit int) ([]ShelterDistance, error) {
	if err := s.Geo.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	var shelters []models.Shelter
	if err := s.DB.
		Where("status = ? AND current_occupancy < capacity", "Active").
		Find(&shelters).Error; err != nil {
		return nil, fmt.Errorf("%w: query shelters: %v", ErrStorage, err)
	}

	results := make([]ShelterDistance, 0, len(shelters))
	for _, shelter := range shelters {
		distance, err := s.Geo.Distance(lat, lon, shelter.Latitude, shelter.Longitude)
		if err != nil {
			continue
		}
		results = append(results, ShelterDistance{Shelter: shelter, DistanceKm: distance})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

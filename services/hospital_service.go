package services

import (
	"errors"
	"fmt"
	"sort"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// InterfaceHospitalService 定义医院服务接口
type InterfaceHospitalService interface {
	GetAllHospitals(page, pageSize int, status string) ([]models.Hospital, int64, error)
	GetHospitalByID(id uint) (*models.Hospital, error)
	CreateHospital(hospital *models.Hospital) error
	UpdateHospital(id uint, updates map[string]interface{}) (*models.Hospital, error)
	DeleteHospital(id uint) error
	UpdateBedAvailability(id uint, availableBeds, availableICU int) (*models.Hospital, error)
	FindNearestWithBeds(lat, lon float64, needICU bool, limit int) ([]HospitalDistance, error)
}

// HospitalDistance 带距离的医院查询结果
type HospitalDistance struct {
	Hospital   models.Hospital `json:"hospital"`
	DistanceKm float64         `json:"distance_km"`
}

// HospitalService 提供医院相关的服务
type HospitalService struct {
	DB     *gorm.DB
	Config *config.Config
	Geo    *GeoService
}

// NewHospitalService 创建一个新的医院服务
func NewHospitalService(db *gorm.DB, cfg *config.Config, geo *GeoService) InterfaceHospitalService {
	return &HospitalService{
		DB:     db,
		Config: cfg,
		Geo:    geo,
	}
}

// 1. GetAllHospitals 获取医院列表，支持分页和状态过滤
func (s *HospitalService) GetAllHospitals(page, pageSize int, status string) ([]models.Hospital, int64, error) {
	query := s.DB.Model(&models.Hospital{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count hospitals: %v", ErrStorage, err)
	}

	var hospitals []models.Hospital
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&hospitals).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: query hospitals: %v", ErrStorage, err)
	}

	return hospitals, total, nil
}

// 2. GetHospitalByID 根据ID获取医院
func (s *HospitalService) GetHospitalByID(id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := s.DB.First(&hospital, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: hospital %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: query hospital: %v", ErrStorage, err)
	}
	return &hospital, nil
}

// 3. CreateHospital 创建新医院
func (s *HospitalService) CreateHospital(hospital *models.Hospital) error {
	if hospital.Name == "" {
		return fmt.Errorf("%w: hospital name is required", ErrValidation)
	}
	if hospital.TotalBeds < 0 || hospital.AvailableBeds < 0 || hospital.AvailableBeds > hospital.TotalBeds {
		return fmt.Errorf("%w: inconsistent bed counts", ErrValidation)
	}
	if err := s.Geo.ValidateCoordinates(hospital.Latitude, hospital.Longitude); err != nil {
		return err
	}

	if hospital.Status == "" {
		hospital.Status = "Active"
	}

	if err := s.DB.Create(hospital).Error; err != nil {
		return fmt.Errorf("%w: create hospital: %v", ErrStorage, err)
	}
	return nil
}

// 4. UpdateHospital 更新医院信息
func (s *HospitalService) UpdateHospital(id uint, updates map[string]interface{}) (*models.Hospital, error) {
	hospital, err := s.GetHospitalByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(hospital).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: update hospital: %v", ErrStorage, err)
	}

	return s.GetHospitalByID(id)
}

// 5. DeleteHospital 删除医院
func (s *HospitalService) DeleteHospital(id uint) error {
	hospital, err := s.GetHospitalByID(id)
	if err != nil {
		return err
	}

	if err := s.DB.Delete(hospital).Error; err != nil {
		return fmt.Errorf("%w: delete hospital: %v", ErrStorage, err)
	}
	return nil
}

// 6. UpdateBedAvailability 更新床位可用性
func (s *HospitalService) UpdateBedAvailability(id uint, availableBeds, availableICU int) (*models.Hospital, error) {
	hospital, err := s.GetHospitalByID(id)
	if err != nil {
		return nil, err
	}

	if availableBeds < 0 || availableBeds > hospital.TotalBeds {
		return nil, fmt.Errorf("%w: available beds out of range 0..%d", ErrValidation, hospital.TotalBeds)
	}
	if availableICU < 0 || availableICU > hospital.ICUBeds {
		return nil, fmt.Errorf("%w: available ICU beds out of range 0..%d", ErrValidation, hospital.ICUBeds)
	}

	return s.UpdateHospital(id, map[string]interface{}{
		"available_beds": availableBeds,
		"available_icu":  availableICU,
	})
}

// 7. FindNearestWithBeds 查找距离指定坐标最近的有空床的医院
func (s *HospitalService) FindNearestWithBeds(lat, lon float64, needICU bool, limit int) ([]HospitalDistance, error) {
	if err := s.Geo.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	query := s.DB.Where("status = ?", "Active")
	if needICU {
		query = query.Where("available_icu > 0")
	} else {
		query = query.Where("available_beds > 0")
	}

	var hospitals []models.Hospital
	if err := query.Find(&hospitals).Error; err != nil {
		return nil, fmt.Errorf("%w: query hospitals: %v", ErrStorage, err)
	}

	results := make([]HospitalDistance, 0, len(hospitals))
	for _, hospital := range hospitals {
		distance, err := s.Geo.Distance(lat, lon, hospital.Latitude, hospital.Longitude)
		if err != nil {
			continue
		}
		results = append(results, HospitalDistance{Hospital: hospital, DistanceKm: distance})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

package services

import (
	"fmt"
	"math"
)

// earthRadiusKm 地球平均半径（公里）
const earthRadiusKm = 6371

// GeoService 提供地理坐标计算
type GeoService struct{}

// NewGeoService 创建一个新的地理计算服务
func NewGeoService() *GeoService {
	return &GeoService{}
}

// ValidateCoordinates 校验坐标范围，越界视为调用方契约违反
func (s *GeoService) ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, lon)
	}
	return nil
}

// Distance 使用 haversine 公式计算两点间的大圆距离（公里）。
// 满足对称性 Distance(A,B) == Distance(B,A)，且 Distance(A,A) == 0。
func (s *GeoService) Distance(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := s.ValidateCoordinates(lat1, lon1); err != nil {
		return 0, err
	}
	if err := s.ValidateCoordinates(lat2, lon2); err != nil {
		return 0, err
	}

	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c, nil
}

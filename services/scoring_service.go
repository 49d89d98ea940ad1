package services

import (
	"resq-http-service/config"
	"resq-http-service/models"
)

// 组合评分权重
const (
	orgDistanceWeight = 0.4
	orgCapacityWeight = 0.3
	orgCategoryWeight = 0.3

	staffDistanceWeight = 0.6
	staffSkillWeight    = 0.4

	divisionCapacityWeight = 0.7
	divisionTypeWeight     = 0.3

	tagMatchScore   = 100.0
	tagPartialScore = 50.0
)

// ScoringService 对候选机构/人员/分队做纯函数排名。
// 不访问存储，候选集合由调用方传入；相同输入两次运行结果一致。
type ScoringService struct {
	geo *GeoService

	// 候选者缺少坐标时回退到默认调度中心坐标
	defaultLat float64
	defaultLon float64
}

// NewScoringService 创建一个新的评分服务
func NewScoringService(geo *GeoService, cfg *config.Config) *ScoringService {
	return &ScoringService{
		geo:        geo,
		defaultLat: cfg.DefaultLatitude,
		defaultLon: cfg.DefaultLongitude,
	}
}

// resolveCoords 返回候选者的坐标，缺失时回退到默认坐标
func (s *ScoringService) resolveCoords(lat, lon *float64) (float64, float64) {
	if lat == nil || lon == nil {
		return s.defaultLat, s.defaultLon
	}
	return *lat, *lon
}

// ScoreOrganization 计算机构对工单的组合得分：
// 0.4*距离分 + 0.3*容量分 + 0.3*类别匹配分
func (s *ScoringService) ScoreOrganization(ticket *models.EmergencyTicket, org *models.Organization) (float64, error) {
	lat, lon := s.resolveCoords(org.Latitude, org.Longitude)
	distance, err := s.geo.Distance(ticket.Latitude, ticket.Longitude, lat, lon)
	if err != nil {
		return 0, err
	}

	distanceScore := 100 - 2*distance
	if distanceScore < 0 {
		distanceScore = 0
	}

	capacityScore := 0.0
	if org.Capacity > 0 {
		capacityScore = float64(org.Capacity-org.CurrentLoad) / float64(org.Capacity) * 100
	}

	categoryScore := tagPartialScore
	if org.CategoryTags().MatchesCategory(ticket.Category) {
		categoryScore = tagMatchScore
	}

	return orgDistanceWeight*distanceScore + orgCapacityWeight*capacityScore + orgCategoryWeight*categoryScore, nil
}

// ScoreStaff 计算人员对工单的组合得分：0.6*距离分 + 0.4*技能匹配分
func (s *ScoringService) ScoreStaff(ticket *models.EmergencyTicket, staff *models.Staff) (float64, error) {
	lat, lon := s.resolveCoords(staff.Latitude, staff.Longitude)
	distance, err := s.geo.Distance(ticket.Latitude, ticket.Longitude, lat, lon)
	if err != nil {
		return 0, err
	}

	distanceScore := 100 - 3*distance
	if distanceScore < 0 {
		distanceScore = 0
	}

	skillScore := tagPartialScore
	if staff.SkillTags().MatchesCategory(ticket.Category) {
		skillScore = tagMatchScore
	}

	return staffDistanceWeight*distanceScore + staffSkillWeight*skillScore, nil
}

// ScoreDivision 计算分队对工单的组合得分：0.7*容量分 + 0.3*类型匹配分
func (s *ScoringService) ScoreDivision(ticket *models.EmergencyTicket, division *models.Division) (float64, error) {
	capacityScore := 0.0
	if division.Capacity > 0 {
		capacityScore = float64(division.Capacity-division.CurrentLoad) / float64(division.Capacity) * 100
	}

	typeScore := tagPartialScore
	if division.TypeTags().MatchesCategory(ticket.Category) {
		typeScore = tagMatchScore
	}

	return divisionCapacityWeight*capacityScore + divisionTypeWeight*typeScore, nil
}

// BestOrganization 返回得分最高的机构，平分时取ID最小者。
// 候选集合为空返回 nil，不视为错误。
func (s *ScoringService) BestOrganization(ticket *models.EmergencyTicket, orgs []models.Organization) (*models.Organization, float64, error) {
	var best *models.Organization
	bestScore := 0.0

	for i := range orgs {
		org := &orgs[i]
		score, err := s.ScoreOrganization(ticket, org)
		if err != nil {
			return nil, 0, err
		}
		if best == nil || score > bestScore || (score == bestScore && org.ID < best.ID) {
			best = org
			bestScore = score
		}
	}

	return best, bestScore, nil
}

// BestStaff 返回得分最高的人员，平分时取ID最小者
func (s *ScoringService) BestStaff(ticket *models.EmergencyTicket, staff []models.Staff) (*models.Staff, float64, error) {
	var best *models.Staff
	bestScore := 0.0

	for i := range staff {
		member := &staff[i]
		score, err := s.ScoreStaff(ticket, member)
		if err != nil {
			return nil, 0, err
		}
		if best == nil || score > bestScore || (score == bestScore && member.ID < best.ID) {
			best = member
			bestScore = score
		}
	}

	return best, bestScore, nil
}

// BestDivision 返回得分最高的分队，平分时取ID最小者
func (s *ScoringService) BestDivision(ticket *models.EmergencyTicket, divisions []models.Division) (*models.Division, float64, error) {
	var best *models.Division
	bestScore := 0.0

	for i := range divisions {
		division := &divisions[i]
		score, err := s.ScoreDivision(ticket, division)
		if err != nil {
			return nil, 0, err
		}
		if best == nil || score > bestScore || (score == bestScore && division.ID < best.ID) {
			best = division
			bestScore = score
		}
	}

	return best, bestScore, nil
}

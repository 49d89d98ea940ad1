package services

import (
	"fmt"
	"time"

	"resq-http-service/config"
	"resq-http-service/models"

	"gorm.io/gorm"
)

// DashboardStats 调度大盘统计
type DashboardStats struct {
	Tickets struct {
		Total             int64            `json:"total"`
		ByStatus          map[string]int64 `json:"by_status"`
		ByPriority        map[int]int64    `json:"by_priority"`
		PendingHighUrgent int64            `json:"pending_high_urgent"` // 优先级>=4的未分配工单
	} `json:"tickets"`
	Organizations struct {
		Total         int64 `json:"total"`
		Active        int64 `json:"active"`
		TotalCapacity int64 `json:"total_capacity"`
		TotalLoad     int64 `json:"total_load"`
	} `json:"organizations"`
	Staff struct {
		Total     int64 `json:"total"`
		Available int64 `json:"available"`
		Busy      int64 `json:"busy"`
	} `json:"staff"`
	Shelters struct {
		Total         int64 `json:"total"`
		TotalCapacity int64 `json:"total_capacity"`
		TotalOccupied int64 `json:"total_occupied"`
	} `json:"shelters"`
	Hospitals struct {
		Total         int64 `json:"total"`
		AvailableBeds int64 `json:"available_beds"`
		AvailableICU  int64 `json:"available_icu"`
	} `json:"hospitals"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CoordinationOverview 单个工单的协调视图：最近的设施和当前响应状态
type CoordinationOverview struct {
	Ticket          *models.EmergencyTicket  `json:"ticket"`
	NearbyShelters  []ShelterDistance        `json:"nearby_shelters"`
	NearbyHospitals []HospitalDistance       `json:"nearby_hospitals"`
	NearbyResources []ResourceCenterDistance `json:"nearby_resources"`
	History         []models.TicketUpdate    `json:"history"`
}

// InterfaceDashboardService 定义调度大盘服务接口
type InterfaceDashboardService interface {
	GetStats() (*DashboardStats, error)
	GetCoordinationOverview(ticketID uint) (*CoordinationOverview, error)
}

// DashboardService 聚合工单、机构、人员和设施的运行视图。
// 统计结果在Redis中缓存30秒，大盘轮询不打穿数据库。
type DashboardService struct {
	DB        *gorm.DB
	Config    *config.Config
	Redis     *RedisService
	Tickets   InterfaceTicketService
	History   InterfaceHistoryService
	Shelters  InterfaceShelterService
	Hospitals InterfaceHospitalService
	Resources InterfaceResourceService
	Clock     Clock
}

// NewDashboardService 创建一个新的调度大盘服务
func NewDashboardService(
	db *gorm.DB,
	cfg *config.Config,
	redisService *RedisService,
	tickets InterfaceTicketService,
	history InterfaceHistoryService,
	shelters InterfaceShelterService,
	hospitals InterfaceHospitalService,
	resources InterfaceResourceService,
	clock Clock,
) InterfaceDashboardService {
	return &DashboardService{
		DB:        db,
		Config:    cfg,
		Redis:     redisService,
		Tickets:   tickets,
		History:   history,
		Shelters:  shelters,
		Hospitals: hospitals,
		Resources: resources,
		Clock:     clock,
	}
}

const statsCacheTTL = 30 * time.Second

// GetStats 返回调度大盘统计，优先走缓存
func (s *DashboardService) GetStats() (*DashboardStats, error) {
	if s.Redis != nil {
		var cached DashboardStats
		if err := s.Redis.GetDashboardStats("global", &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.computeStats()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := s.Redis.CacheDashboardStats("global", stats, statsCacheTTL); err != nil {
			config.Warning("大盘统计缓存写入失败: %v", err)
		}
	}
	return stats, nil
}

func (s *DashboardService) computeStats() (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: s.Clock.Now()}
	stats.Tickets.ByStatus = make(map[string]int64)
	stats.Tickets.ByPriority = make(map[int]int64)

	if err := s.DB.Model(&models.EmergencyTicket{}).Count(&stats.Tickets.Total).Error; err != nil {
		return nil, fmt.Errorf("%w: count tickets: %v", ErrStorage, err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var statusCounts []statusCount
	if err := s.DB.Model(&models.EmergencyTicket{}).
		Select("status, count(*) as count").Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("%w: group tickets by status: %v", ErrStorage, err)
	}
	for _, sc := range statusCounts {
		stats.Tickets.ByStatus[sc.Status] = sc.Count
	}

	type priorityCount struct {
		Priority int
		Count    int64
	}
	var priorityCounts []priorityCount
	if err := s.DB.Model(&models.EmergencyTicket{}).
		Select("priority, count(*) as count").Group("priority").
		Scan(&priorityCounts).Error; err != nil {
		return nil, fmt.Errorf("%w: group tickets by priority: %v", ErrStorage, err)
	}
	for _, pc := range priorityCounts {
		stats.Tickets.ByPriority[pc.Priority] = pc.Count
	}

	if err := s.DB.Model(&models.EmergencyTicket{}).
		Where("status = ? AND priority >= 4", models.TicketStatusPending).
		Count(&stats.Tickets.PendingHighUrgent).Error; err != nil {
		return nil, fmt.Errorf("%w: count urgent pending tickets: %v", ErrStorage, err)
	}

	if err := s.DB.Model(&models.Organization{}).Count(&stats.Organizations.Total).Error; err != nil {
		return nil, fmt.Errorf("%w: count organizations: %v", ErrStorage, err)
	}
	if err := s.DB.Model(&models.Organization{}).Where("status = ?", "Active").
		Count(&stats.Organizations.Active).Error; err != nil {
		return nil, fmt.Errorf("%w: count active organizations: %v", ErrStorage, err)
	}
	type capacitySums struct {
		CapTotal  int64 `gorm:"column:cap_total"`
		LoadTotal int64 `gorm:"column:load_total"`
	}
	var orgSums capacitySums
	if err := s.DB.Model(&models.Organization{}).
		Select("COALESCE(SUM(capacity),0) as cap_total, COALESCE(SUM(current_load),0) as load_total").
		Scan(&orgSums).Error; err != nil {
		return nil, fmt.Errorf("%w: sum organization capacity: %v", ErrStorage, err)
	}
	stats.Organizations.TotalCapacity = orgSums.CapTotal
	stats.Organizations.TotalLoad = orgSums.LoadTotal

	if err := s.DB.Model(&models.Staff{}).Count(&stats.Staff.Total).Error; err != nil {
		return nil, fmt.Errorf("%w: count staff: %v", ErrStorage, err)
	}
	if err := s.DB.Model(&models.Staff{}).Where("availability = ?", models.StaffAvailable).
		Count(&stats.Staff.Available).Error; err != nil {
		return nil, fmt.Errorf("%w: count available staff: %v", ErrStorage, err)
	}
	if err := s.DB.Model(&models.Staff{}).Where("availability = ?", models.StaffBusy).
		Count(&stats.Staff.Busy).Error; err != nil {
		return nil, fmt.Errorf("%w: count busy staff: %v", ErrStorage, err)
	}

	if err := s.DB.Model(&models.Shelter{}).Count(&stats.Shelters.Total).Error; err != nil {
		return nil, fmt.Errorf("%w: count shelters: %v", ErrStorage, err)
	}
	type shelterSums struct {
		CapTotal      int64 `gorm:"column:cap_total"`
		OccupiedTotal int64 `gorm:"column:occupied_total"`
	}
	var shSums shelterSums
	if err := s.DB.Model(&models.Shelter{}).
		Select("COALESCE(SUM(capacity),0) as cap_total, COALESCE(SUM(current_occupancy),0) as occupied_total").
		Scan(&shSums).Error; err != nil {
		return nil, fmt.Errorf("%w: sum shelter capacity: %v", ErrStorage, err)
	}
	stats.Shelters.TotalCapacity = shSums.CapTotal
	stats.Shelters.TotalOccupied = shSums.OccupiedTotal

	if err := s.DB.Model(&models.Hospital{}).Count(&stats.Hospitals.Total).Error; err != nil {
		return nil, fmt.Errorf("%w: count hospitals: %v", ErrStorage, err)
	}
	type bedSums struct {
		BedTotal int64 `gorm:"column:bed_total"`
		ICUTotal int64 `gorm:"column:icu_total"`
	}
	var hSums bedSums
	if err := s.DB.Model(&models.Hospital{}).
		Select("COALESCE(SUM(available_beds),0) as bed_total, COALESCE(SUM(available_icu),0) as icu_total").
		Scan(&hSums).Error; err != nil {
		return nil, fmt.Errorf("%w: sum hospital beds: %v", ErrStorage, err)
	}
	stats.Hospitals.AvailableBeds = hSums.BedTotal
	stats.Hospitals.AvailableICU = hSums.ICUTotal

	return stats, nil
}

// GetCoordinationOverview 返回工单周边的协调视图
func (s *DashboardService) GetCoordinationOverview(ticketID uint) (*CoordinationOverview, error) {
	ticket, err := s.Tickets.GetTicketByID(ticketID)
	if err != nil {
		return nil, err
	}

	overview := &CoordinationOverview{Ticket: ticket}

	lat, lon := ticket.Latitude, ticket.Longitude

	if shelters, err := s.Shelters.FindNearest(lat, lon, 3); err == nil {
		overview.NearbyShelters = shelters
	}
	needICU := ticket.Priority >= 4
	if hospitals, err := s.Hospitals.FindNearestWithBeds(lat, lon, needICU, 3); err == nil {
		overview.NearbyHospitals = hospitals
	}
	if resources, err := s.Resources.FindNearestWithStock(lat, lon, "", 3); err == nil {
		overview.NearbyResources = resources
	}

	history, err := s.History.GetTicketHistory(ticketID)
	if err != nil {
		return nil, err
	}
	overview.History = history

	return overview, nil
}

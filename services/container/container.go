package container

import (
	"context"
	"log"
	"sync"
	"time"

	"resq-http-service/config"
	"resq-http-service/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client
	clock  services.Clock

	// 基础服务
	jwtService *services.JWTService

	// 数据存储服务
	redisService *services.RedisService

	// MQTT通知服务
	notificationService services.InterfaceNotificationService

	// 调度核心服务
	geoService        *services.GeoService
	scoringService    *services.ScoringService
	historyService    services.InterfaceHistoryService
	schedulerService  services.InterfaceSchedulerService
	assignmentService services.InterfaceAssignmentService

	// 业务服务
	ticketService       services.InterfaceTicketService
	organizationService services.InterfaceOrganizationService
	divisionService     services.InterfaceDivisionService
	staffService        services.InterfaceStaffService
	shelterService      services.InterfaceShelterService
	hospitalService     services.InterfaceHospitalService
	resourceService     services.InterfaceResourceService
	dashboardService    services.InterfaceDashboardService
	floodService        *services.FloodService
	adminService        *services.AdminService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis连接测试失败: %v，将不使用Redis缓存", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
		clock:  services.NewSystemClock(),
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config)
	c.redisService = services.NewRedisService(c.config)

	// 初始化MQTT通知服务
	c.notificationService = services.NewNotificationService(c.config)
	if err := c.notificationService.Connect(); err != nil {
		log.Printf("MQTT服务连接失败: %v", err)
	}

	// 初始化调度核心服务
	c.geoService = services.NewGeoService()
	c.scoringService = services.NewScoringService(c.geoService, c.config)
	c.historyService = services.NewHistoryService(c.db, c.config, c.clock)
	c.schedulerService = services.NewSchedulerService(c.redisService.Client, c.config, c.clock)
	c.assignmentService = services.NewAssignmentService(
		c.db, c.config, c.scoringService, c.historyService,
		c.schedulerService, c.notificationService, c.clock)

	// 调度器到期回调指向分配服务，两者先构造后接线
	c.schedulerService.SetTimeoutHandler(c.assignmentService.HandleAcceptanceTimeout)

	// 初始化业务服务
	c.ticketService = services.NewTicketService(c.db, c.config, c.geoService, c.historyService, c.clock)
	c.organizationService = services.NewOrganizationService(c.db, c.config, c.geoService)
	c.divisionService = services.NewDivisionService(c.db, c.config)
	c.staffService = services.NewStaffService(c.db, c.config, c.geoService)
	c.shelterService = services.NewShelterService(c.db, c.config, c.geoService)
	c.hospitalService = services.NewHospitalService(c.db, c.config, c.geoService)
	c.resourceService = services.NewResourceService(c.db, c.config, c.geoService)
	c.dashboardService = services.NewDashboardService(
		c.db, c.config, c.redisService, c.ticketService, c.historyService,
		c.shelterService, c.hospitalService, c.resourceService, c.clock)
	c.floodService = services.NewFloodService(c.config, c.redisService)
	c.adminService = services.NewAdminService(c.db, c.config)
}

// StartScheduler 启动接受窗口调度器轮询循环
func (c *ServiceContainer) StartScheduler() {
	c.schedulerService.Start()
}

// Shutdown 停止后台任务并断开外部连接
func (c *ServiceContainer) Shutdown() {
	c.schedulerService.Stop()
	c.notificationService.Disconnect()
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "notification":
		return c.notificationService
	case "geo":
		return c.geoService
	case "scoring":
		return c.scoringService
	case "history":
		return c.historyService
	case "scheduler":
		return c.schedulerService
	case "assignment":
		return c.assignmentService
	case "ticket":
		return c.ticketService
	case "organization":
		return c.organizationService
	case "division":
		return c.divisionService
	case "staff":
		return c.staffService
	case "shelter":
		return c.shelterService
	case "hospital":
		return c.hospitalService
	case "resource":
		return c.resourceService
	case "dashboard":
		return c.dashboardService
	case "flood":
		return c.floodService
	case "admin":
		return c.adminService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

package routes

import (
	"time"

	"resq-http-service/config"
	"resq-http-service/controllers"
	"resq-http-service/middleware"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(serviceContainer *container.ServiceContainer, cfg *config.Config) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg)
	if redisService, ok := serviceContainer.GetService("redis").(*services.RedisService); ok {
		middleware.InitRateLimiter(redisService)
	}
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册调度操作员路由
	registerOperatorRoutes(api, container)
	// 注册系统管理员路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每分钟60个请求
	api.Use(middleware.IPRateLimiter(60, time.Minute))

	// 健康检查
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	api.GET("/health", controllers.HandleHealthFunc(container, "ping"))

	// 认证路由 - 登录接口单独收紧限流
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.CombinedRateLimiter(10, time.Minute))
	authGroup.POST("/login", controllers.HandleJWTFunc(container, "login"))

	// 洪涝态势查询
	api.GET("/flood", controllers.HandleFloodFunc(container, "getFloodByRegion"))

	// 工单上报对公众开放
	api.POST("/tickets", controllers.HandleTicketFunc(container, "createTicket"))
}

// registerOperatorRoutes 注册调度操作员路由
func registerOperatorRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	op := api.Group("/")
	op.Use(middleware.AuthenticateOperator())

	// 工单路由
	op.Group("/tickets").GET("", controllers.HandleTicketFunc(container, "getTickets"))
	op.Group("/tickets").GET("/map", controllers.HandleTicketFunc(container, "getTicketsInBounds"))
	op.Group("/tickets").GET("/:id", controllers.HandleTicketFunc(container, "getTicket"))
	op.Group("/tickets").PUT("/:id", controllers.HandleTicketFunc(container, "updateTicket"))
	op.Group("/tickets").DELETE("/:id", controllers.HandleTicketFunc(container, "deleteTicket"))
	op.Group("/tickets").GET("/:id/history", controllers.HandleTicketFunc(container, "getTicketHistory"))

	// 派单路由
	op.Group("/tickets").GET("/:id/recommendation", controllers.HandleAssignmentFunc(container, "getRecommendation"))
	op.Group("/tickets").POST("/:id/propose", controllers.HandleAssignmentFunc(container, "propose"))
	op.Group("/tickets").POST("/:id/accept", controllers.HandleAssignmentFunc(container, "accept"))
	op.Group("/tickets").POST("/:id/reject", controllers.HandleAssignmentFunc(container, "reject"))
	op.Group("/tickets").POST("/:id/complete", controllers.HandleAssignmentFunc(container, "complete"))
	op.Group("/tickets").POST("/:id/cancel", controllers.HandleAssignmentFunc(container, "cancel"))
	op.Group("/tickets").POST("/:id/deploy", controllers.HandleAssignmentFunc(container, "deploy"))
	op.Group("/tickets").GET("/:id/response-status", controllers.HandleAssignmentFunc(container, "responseStatus"))

	// 救援机构路由
	op.Group("/organizations").GET("", controllers.HandleOrganizationFunc(container, "getOrganizations"))
	op.Group("/organizations").GET("/:id", controllers.HandleOrganizationFunc(container, "getOrganization"))
	op.Group("/organizations").POST("", controllers.HandleOrganizationFunc(container, "createOrganization"))
	op.Group("/organizations").PUT("/:id", controllers.HandleOrganizationFunc(container, "updateOrganization"))
	op.Group("/organizations").DELETE("/:id", controllers.HandleOrganizationFunc(container, "deleteOrganization"))
	op.Group("/organizations").GET("/:id/divisions", controllers.HandleOrganizationFunc(container, "getOrganizationDivisions"))
	op.Group("/organizations").GET("/:id/staffs", controllers.HandleOrganizationFunc(container, "getOrganizationStaff"))
	op.Group("/organizations").GET("/:id/tickets", controllers.HandleOrganizationFunc(container, "getOrganizationTickets"))

	// 下属分队路由
	op.Group("/divisions").GET("", controllers.HandleDivisionFunc(container, "getDivisions"))
	op.Group("/divisions").GET("/:id", controllers.HandleDivisionFunc(container, "getDivision"))
	op.Group("/divisions").POST("", controllers.HandleDivisionFunc(container, "createDivision"))
	op.Group("/divisions").PUT("/:id", controllers.HandleDivisionFunc(container, "updateDivision"))
	op.Group("/divisions").DELETE("/:id", controllers.HandleDivisionFunc(container, "deleteDivision"))

	// 救援人员路由
	op.Group("/staffs").GET("", controllers.HandleStaffFunc(container, "getStaffs"))
	op.Group("/staffs").GET("/:id", controllers.HandleStaffFunc(container, "getStaff"))
	op.Group("/staffs").POST("", controllers.HandleStaffFunc(container, "createStaff"))
	op.Group("/staffs").PUT("/:id", controllers.HandleStaffFunc(container, "updateStaff"))
	op.Group("/staffs").DELETE("/:id", controllers.HandleStaffFunc(container, "deleteStaff"))
	op.Group("/staffs").PUT("/:id/availability", controllers.HandleStaffFunc(container, "updateAvailability"))

	// 避难所路由
	op.Group("/shelters").GET("", controllers.HandleShelterFunc(container, "getShelters"))
	op.Group("/shelters").GET("/nearest", controllers.HandleShelterFunc(container, "findNearest"))
	op.Group("/shelters").GET("/:id", controllers.HandleShelterFunc(container, "getShelter"))
	op.Group("/shelters").POST("", controllers.HandleShelterFunc(container, "createShelter"))
	op.Group("/shelters").PUT("/:id", controllers.HandleShelterFunc(container, "updateShelter"))
	op.Group("/shelters").DELETE("/:id", controllers.HandleShelterFunc(container, "deleteShelter"))
	op.Group("/shelters").PUT("/:id/occupancy", controllers.HandleShelterFunc(container, "updateOccupancy"))

	// 医院路由
	op.Group("/hospitals").GET("", controllers.HandleHospitalFunc(container, "getHospitals"))
	op.Group("/hospitals").GET("/nearest", controllers.HandleHospitalFunc(container, "findNearest"))
	op.Group("/hospitals").GET("/:id", controllers.HandleHospitalFunc(container, "getHospital"))
	op.Group("/hospitals").POST("", controllers.HandleHospitalFunc(container, "createHospital"))
	op.Group("/hospitals").PUT("/:id", controllers.HandleHospitalFunc(container, "updateHospital"))
	op.Group("/hospitals").DELETE("/:id", controllers.HandleHospitalFunc(container, "deleteHospital"))
	op.Group("/hospitals").PUT("/:id/beds", controllers.HandleHospitalFunc(container, "updateBeds"))

	// 物资中心路由
	op.Group("/resources").GET("", controllers.HandleResourceFunc(container, "getResourceCenters"))
	op.Group("/resources").GET("/nearest", controllers.HandleResourceFunc(container, "findNearest"))
	op.Group("/resources").GET("/:id", controllers.HandleResourceFunc(container, "getResourceCenter"))
	op.Group("/resources").POST("", controllers.HandleResourceFunc(container, "createResourceCenter"))
	op.Group("/resources").PUT("/:id", controllers.HandleResourceFunc(container, "updateResourceCenter"))
	op.Group("/resources").DELETE("/:id", controllers.HandleResourceFunc(container, "deleteResourceCenter"))
	op.Group("/resources").PUT("/:id/stock", controllers.HandleResourceFunc(container, "adjustStock"))

	// 指挥大屏路由
	op.Group("/dashboard").GET("/stats", controllers.HandleDashboardFunc(container, "getStats"))
	op.Group("/dashboard").GET("/tickets/:id/overview", controllers.HandleDashboardFunc(container, "getCoordinationOverview"))

	// 运营广播路由
	op.Group("/notifications").POST("/broadcast", controllers.HandleNotificationFunc(container, "broadcast"))
}

// registerAdminRoutes 注册系统管理员路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateSystemAdmin())

	// 管理员路由
	auth.Group("/admin").GET("", controllers.HandleAdminFunc(container, "getAdmins"))
	auth.Group("/admin").GET("/:id", controllers.HandleAdminFunc(container, "getAdmin"))
	auth.Group("/admin").POST("", controllers.HandleAdminFunc(container, "createAdmin"))
	auth.Group("/admin").PUT("/:id", controllers.HandleAdminFunc(container, "updateAdmin"))
	auth.Group("/admin").DELETE("/:id", controllers.HandleAdminFunc(container, "deleteAdmin"))
}

package controllers

import (
	"net/http"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// HealthController 处理健康检查请求
type HealthController struct {
	BaseControllerImpl
}

// NewHealthController 创建一个新的健康检查控制器
func (f *ControllerFactory) NewHealthController(ctx *gin.Context) *HealthController {
	return &HealthController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewHealthController(ctx)

		switch method {
		case "ping":
			controller.Ping()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. Ping 健康检查
// @Summary      健康检查
// @Description  检查数据库与Redis连接状态
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (c *HealthController) Ping() {
	status := gin.H{
		"service": "resq-http-service",
		"status":  "ok",
	}

	db := c.Container.GetDB()
	if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		status["database"] = "unreachable"
		status["status"] = "degraded"
	} else {
		status["database"] = "ok"
	}

	redisService := c.Container.GetService("redis").(*services.RedisService)
	if err := redisService.Client.Ping(redisService.Ctx).Err(); err != nil {
		status["redis"] = "unreachable"
		status["status"] = "degraded"
	} else {
		status["redis"] = "ok"
	}

	respondOK(c.Context, "成功", status)
}

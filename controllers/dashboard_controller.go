package controllers

import (
	"net/http"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// DashboardController 处理指挥大屏统计相关的请求
type DashboardController struct {
	BaseControllerImpl
}

// NewDashboardController 创建一个新的指挥大屏控制器
func (f *ControllerFactory) NewDashboardController(ctx *gin.Context) *DashboardController {
	return &DashboardController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleDashboardFunc 返回一个处理大屏请求的Gin处理函数
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewDashboardController(ctx)

		switch method {
		case "getStats":
			controller.GetStats()
		case "getCoordinationOverview":
			controller.GetCoordinationOverview()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetStats 获取全局统计数据
// @Summary      获取指挥大屏统计数据
// @Description  包含工单、机构、人员、避难所与医院的汇总指标，带30秒缓存
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /dashboard/stats [get]
// @Security     BearerAuth
func (c *DashboardController) GetStats() {
	dashboardService := c.Container.GetService("dashboard").(services.InterfaceDashboardService)
	stats, err := dashboardService.GetStats()
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", stats)
}

// 2. GetCoordinationOverview 获取单个工单的联动视图
// @Summary      获取工单联动视图
// @Description  汇总工单附近的避难所、医院、物资中心以及处置历史
// @Tags         Dashboard
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /dashboard/tickets/{id}/overview [get]
// @Security     BearerAuth
func (c *DashboardController) GetCoordinationOverview() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	dashboardService := c.Container.GetService("dashboard").(services.InterfaceDashboardService)
	overview, err := dashboardService.GetCoordinationOverview(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", overview)
}

package controllers

import (
	"net/http"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// FloodController 处理洪涝态势查询请求
type FloodController struct {
	BaseControllerImpl
}

// NewFloodController 创建一个新的洪涝态势控制器
func (f *ControllerFactory) NewFloodController(ctx *gin.Context) *FloodController {
	return &FloodController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleFloodFunc 返回一个处理洪涝态势请求的Gin处理函数
func HandleFloodFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewFloodController(ctx)

		switch method {
		case "getFloodByRegion":
			controller.GetFloodByRegion()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetFloodByRegion 获取指定区域的洪涝态势
// @Summary      获取区域洪涝态势
// @Description  优先读取缓存，缓存未命中时请求外部水情接口
// @Tags         Flood
// @Produce      json
// @Param        region query string true "区域名称"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /flood [get]
func (c *FloodController) GetFloodByRegion() {
	floodService := c.Container.GetService("flood").(*services.FloodService)
	data, err := floodService.GetFloodByRegion(c.Context.Query("region"))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", data)
}

package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// ResourceController 处理物资中心相关的请求
type ResourceController struct {
	BaseControllerImpl
}

// NewResourceController 创建一个新的物资中心控制器
func (f *ControllerFactory) NewResourceController(ctx *gin.Context) *ResourceController {
	return &ResourceController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// StockRequest 库存调整请求
type StockRequest struct {
	Delta int `json:"delta" binding:"required" example:"-20"`
}

// HandleResourceFunc 返回一个处理物资中心请求的Gin处理函数
func HandleResourceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewResourceController(ctx)

		switch method {
		case "getResourceCenters":
			controller.GetResourceCenters()
		case "getResourceCenter":
			controller.GetResourceCenter()
		case "createResourceCenter":
			controller.CreateResourceCenter()
		case "updateResourceCenter":
			controller.UpdateResourceCenter()
		case "deleteResourceCenter":
			controller.DeleteResourceCenter()
		case "adjustStock":
			controller.AdjustStock()
		case "findNearest":
			controller.FindNearest()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetResourceCenters 获取物资中心列表
// @Summary      获取物资中心列表
// @Tags         Resource
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Param        type query string false "物资类型过滤"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /resources [get]
func (c *ResourceController) GetResourceCenters() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	centers, total, err := resourceService.GetAllResourceCenters(page, pageSize, c.Context.Query("type"))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        centers,
	})
}

// 2. GetResourceCenter 获取物资中心详情
// @Summary      获取物资中心详情
// @Tags         Resource
// @Produce      json
// @Param        id path int true "物资中心ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /resources/{id} [get]
func (c *ResourceController) GetResourceCenter() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	center, err := resourceService.GetResourceCenterByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", center)
}

// 3. CreateResourceCenter 创建物资中心
// @Summary      创建物资中心
// @Tags         Resource
// @Accept       json
// @Produce      json
// @Param        request body models.ResourceCenter true "物资中心参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /resources [post]
// @Security     BearerAuth
func (c *ResourceController) CreateResourceCenter() {
	var center models.ResourceCenter
	if err := c.Context.ShouldBindJSON(&center); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	if err := resourceService.CreateResourceCenter(&center); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "物资中心创建成功", center)
}

// 4. UpdateResourceCenter 更新物资中心
// @Summary      更新物资中心
// @Tags         Resource
// @Accept       json
// @Produce      json
// @Param        id path int true "物资中心ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /resources/{id} [put]
// @Security     BearerAuth
func (c *ResourceController) UpdateResourceCenter() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	center, err := resourceService.UpdateResourceCenter(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "物资中心更新成功", center)
}

// 5. DeleteResourceCenter 删除物资中心
// @Summary      删除物资中心
// @Tags         Resource
// @Produce      json
// @Param        id path int true "物资中心ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /resources/{id} [delete]
// @Security     BearerAuth
func (c *ResourceController) DeleteResourceCenter() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	if err := resourceService.DeleteResourceCenter(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "物资中心删除成功", nil)
}

// 6. AdjustStock 调整库存
// @Summary      调整物资中心库存
// @Description  正数入库，负数出库
// @Tags         Resource
// @Accept       json
// @Produce      json
// @Param        id path int true "物资中心ID"
// @Param        request body StockRequest true "库存变化"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /resources/{id}/stock [put]
// @Security     BearerAuth
func (c *ResourceController) AdjustStock() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req StockRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	center, err := resourceService.AdjustStock(id, req.Delta)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "库存调整成功", center)
}

// 7. FindNearest 查找最近的有库存的物资中心
// @Summary      查找最近的有库存的物资中心
// @Tags         Resource
// @Produce      json
// @Param        latitude query number true "纬度"
// @Param        longitude query number true "经度"
// @Param        type query string false "物资类型"
// @Param        limit query int false "返回条数, 默认为5"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /resources/nearest [get]
func (c *ResourceController) FindNearest() {
	lat, err1 := strconv.ParseFloat(c.Context.Query("latitude"), 64)
	lon, err2 := strconv.ParseFloat(c.Context.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		respondBadRequest(c.Context, "无效的坐标参数")
		return
	}
	limit, _ := strconv.Atoi(c.Context.DefaultQuery("limit", "5"))

	resourceService := c.Container.GetService("resource").(services.InterfaceResourceService)
	results, err := resourceService.FindNearestWithStock(lat, lon, c.Context.Query("type"), limit)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"resource_centers": results,
		"total":            len(results),
	})
}

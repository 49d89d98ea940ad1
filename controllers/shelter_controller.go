package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// ShelterController 处理避难所相关的请求
type ShelterController struct {
	BaseControllerImpl
}

// NewShelterController 创建一个新的避难所控制器
func (f *ControllerFactory) NewShelterController(ctx *gin.Context) *ShelterController {
	return &ShelterController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// OccupancyRequest 更新入住人数请求
type OccupancyRequest struct {
	Delta int `json:"delta" binding:"required" example:"25"`
}

// HandleShelterFunc 返回一个处理避难所请求的Gin处理函数
func HandleShelterFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewShelterController(ctx)

		switch method {
		case "getShelters":
			controller.GetShelters()
		case "getShelter":
			controller.GetShelter()
		case "createShelter":
			controller.CreateShelter()
		case "updateShelter":
			controller.UpdateShelter()
		case "deleteShelter":
			controller.DeleteShelter()
		case "updateOccupancy":
			controller.UpdateOccupancy()
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

// 1. GetShelters 获取避难所列表
// @Summary      获取避难所列表
// @Tags         Shelter
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Param        status query string false "状态过滤"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /shelters [get]
func (c *ShelterController) GetShelters() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	shelters, total, err := shelterService.GetAllShelters(page, pageSize, c.Context.Query("status"))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        shelters,
	})
}

// 2. GetShelter 获取避难所详情
// @Summary      获取避难所详情
// @Tags         Shelter
// @Produce      json
// @Param        id path int true "避难所ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /shelters/{id} [get]
func (c *ShelterController) GetShelter() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	shelter, err := shelterService.GetShelterByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", shelter)
}

// 3. CreateShelter 创建避难所
// @Summary      创建避难所
// @Tags         Shelter
// @Accept       json
// @Produce      json
// @Param        request body models.Shelter true "避难所参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /shelters [post]
// @Security     BearerAuth
func (c *ShelterController) CreateShelter() {
	var shelter models.Shelter
	if err := c.Context.ShouldBindJSON(&shelter); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	if err := shelterService.CreateShelter(&shelter); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "避难所创建成功", shelter)
}

// 4. UpdateShelter 更新避难所
// @Summary      更新避难所
// @Tags         Shelter
// @Accept       json
// @Produce      json
// @Param        id path int true "避难所ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /shelters/{id} [put]
// @Security     BearerAuth
func (c *ShelterController) UpdateShelter() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	shelter, err := shelterService.UpdateShelter(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "避难所更新成功", shelter)
}

// 5. DeleteShelter 删除避难所
// @Summary      删除避难所
// @Tags         Shelter
// @Produce      json
// @Param        id path int true "避难所ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /shelters/{id} [delete]
// @Security     BearerAuth
func (c *ShelterController) DeleteShelter() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	if err := shelterService.DeleteShelter(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "避难所删除成功", nil)
}

// 6. UpdateOccupancy 更新入住人数
// @Summary      更新避难所入住人数
// @Description  正数入住，负数离开，不允许超出容量或降到负数
// @Tags         Shelter
// @Accept       json
// @Produce      json
// @Param        id path int true "避难所ID"
// @Param        request body OccupancyRequest true "人数变化"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /shelters/{id}/occupancy [put]
// @Security     BearerAuth
func (c *ShelterController) UpdateOccupancy() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req OccupancyRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	shelter, err := shelterService.UpdateOccupancy(id, req.Delta)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "入住人数更新成功", shelter)
}

// 7. FindNearest 查找最近的避难所
// @Summary      查找最近的有空位的避难所
// @Tags         Shelter
// @Produce      json
// @Param        latitude query number true "纬度"
// @Param        longitude query number true "经度"
// @Param        limit query int false "返回条数, 默认为5"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /shelters/nearest [get]
func (c *ShelterController) FindNearest() {
	lat, err1 := strconv.ParseFloat(c.Context.Query("latitude"), 64)
	lon, err2 := strconv.ParseFloat(c.Context.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		respondBadRequest(c.Context, "无效的坐标参数")
		return
	}
	limit, _ := strconv.Atoi(c.Context.DefaultQuery("limit", "5"))

	shelterService := c.Container.GetService("shelter").(services.InterfaceShelterService)
	results, err := shelterService.FindNearest(lat, lon, limit)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"shelters": results,
		"total":    len(results),
	})
}

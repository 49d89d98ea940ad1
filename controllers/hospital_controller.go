package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// HospitalController 处理医院相关的请求
type HospitalController struct {
	BaseControllerImpl
}

// NewHospitalController 创建一个新的医院控制器
func (f *ControllerFactory) NewHospitalController(ctx *gin.Context) *HospitalController {
	return &HospitalController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// BedAvailabilityRequest 更新床位请求
type BedAvailabilityRequest struct {
	AvailableBeds int `json:"available_beds" example:"42"`
	AvailableICU  int `json:"available_icu" example:"3"`
}

// HandleHospitalFunc 返回一个处理医院请求的Gin处理函数
func HandleHospitalFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewHospitalController(ctx)

		switch method {
		case "getHospitals":
			controller.GetHospitals()
		case "getHospital":
			controller.GetHospital()
		case "createHospital":
			controller.CreateHospital()
		case "updateHospital":
			controller.UpdateHospital()
		case "deleteHospital":
			controller.DeleteHospital()
		case "updateBeds":
			controller.UpdateBeds()
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

// 1. GetHospitals 获取医院列表
// @Summary      获取医院列表
// @Tags         Hospital
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Param        status query string false "状态过滤"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /hospitals [get]
func (c *HospitalController) GetHospitals() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	hospitals, total, err := hospitalService.GetAllHospitals(page, pageSize, c.Context.Query("status"))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        hospitals,
	})
}

// 2. GetHospital 获取医院详情
// @Summary      获取医院详情
// @Tags         Hospital
// @Produce      json
// @Param        id path int true "医院ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /hospitals/{id} [get]
func (c *HospitalController) GetHospital() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	hospital, err := hospitalService.GetHospitalByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", hospital)
}

// 3. CreateHospital 创建医院
// @Summary      创建医院
// @Tags         Hospital
// @Accept       json
// @Produce      json
// @Param        request body models.Hospital true "医院参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /hospitals [post]
// @Security     BearerAuth
func (c *HospitalController) CreateHospital() {
	var hospital models.Hospital
	if err := c.Context.ShouldBindJSON(&hospital); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	if err := hospitalService.CreateHospital(&hospital); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "医院创建成功", hospital)
}

// 4. UpdateHospital 更新医院
// @Summary      更新医院
// @Tags         Hospital
// @Accept       json
// @Produce      json
// @Param        id path int true "医院ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /hospitals/{id} [put]
// @Security     BearerAuth
func (c *HospitalController) UpdateHospital() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	hospital, err := hospitalService.UpdateHospital(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "医院更新成功", hospital)
}

// 5. DeleteHospital 删除医院
// @Summary      删除医院
// @Tags         Hospital
// @Produce      json
// @Param        id path int true "医院ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /hospitals/{id} [delete]
// @Security     BearerAuth
func (c *HospitalController) DeleteHospital() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	if err := hospitalService.DeleteHospital(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "医院删除成功", nil)
}

// 6. UpdateBeds 更新床位可用性
// @Summary      更新医院床位可用性
// @Tags         Hospital
// @Accept       json
// @Produce      json
// @Param        id path int true "医院ID"
// @Param        request body BedAvailabilityRequest true "床位数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /hospitals/{id}/beds [put]
// @Security     BearerAuth
func (c *HospitalController) UpdateBeds() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req BedAvailabilityRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	hospital, err := hospitalService.UpdateBedAvailability(id, req.AvailableBeds, req.AvailableICU)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "床位信息更新成功", hospital)
}

// 7. FindNearest 查找最近的有空床的医院
// @Summary      查找最近的有空床的医院
// @Tags         Hospital
// @Produce      json
// @Param        latitude query number true "纬度"
// @Param        longitude query number true "经度"
// @Param        need_icu query bool false "是否需要ICU"
// @Param        limit query int false "返回条数, 默认为5"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /hospitals/nearest [get]
func (c *HospitalController) FindNearest() {
	lat, err1 := strconv.ParseFloat(c.Context.Query("latitude"), 64)
	lon, err2 := strconv.ParseFloat(c.Context.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		respondBadRequest(c.Context, "无效的坐标参数")
		return
	}
	needICU := c.Context.DefaultQuery("need_icu", "false") == "true"
	limit, _ := strconv.Atoi(c.Context.DefaultQuery("limit", "5"))

	hospitalService := c.Container.GetService("hospital").(services.InterfaceHospitalService)
	results, err := hospitalService.FindNearestWithBeds(lat, lon, needICU, limit)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"hospitals": results,
		"total":     len(results),
	})
}

package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// StaffController 处理响应人员相关的请求
type StaffController struct {
	BaseControllerImpl
}

// NewStaffController 创建一个新的人员控制器
func (f *ControllerFactory) NewStaffController(ctx *gin.Context) *StaffController {
	return &StaffController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// UpdateAvailabilityRequest 更新人员可用性请求
type UpdateAvailabilityRequest struct {
	Availability string `json:"availability" binding:"required" example:"Available"`
}

// HandleStaffFunc 返回一个处理人员请求的Gin处理函数
func HandleStaffFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewStaffController(ctx)

		switch method {
		case "getStaffs":
			controller.GetStaffs()
		case "getStaff":
			controller.GetStaff()
		case "createStaff":
			controller.CreateStaff()
		case "updateStaff":
			controller.UpdateStaff()
		case "deleteStaff":
			controller.DeleteStaff()
		case "updateAvailability":
			controller.UpdateAvailability()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetStaffs 获取人员列表
// @Summary      获取人员列表
// @Tags         Staff
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Param        organization_id query int false "按机构过滤"
// @Param        availability query string false "按可用性过滤"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /staffs [get]
func (c *StaffController) GetStaffs() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	orgID, _ := strconv.Atoi(c.Context.DefaultQuery("organization_id", "0"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, total, err := staffService.GetAllStaff(page, pageSize, uint(orgID), c.Context.Query("availability"))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        staff,
	})
}

// 2. GetStaff 获取人员详情
// @Summary      获取人员详情
// @Tags         Staff
// @Produce      json
// @Param        id path int true "人员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /staffs/{id} [get]
func (c *StaffController) GetStaff() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, err := staffService.GetStaffByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", staff)
}

// 3. CreateStaff 创建人员
// @Summary      创建人员
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        request body models.Staff true "人员参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /staffs [post]
// @Security     BearerAuth
func (c *StaffController) CreateStaff() {
	var staff models.Staff
	if err := c.Context.ShouldBindJSON(&staff); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	if err := staffService.CreateStaff(&staff); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "人员创建成功", staff)
}

// 4. UpdateStaff 更新人员
// @Summary      更新人员
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "人员ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /staffs/{id} [put]
// @Security     BearerAuth
func (c *StaffController) UpdateStaff() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, err := staffService.UpdateStaff(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "人员更新成功", staff)
}

// 5. DeleteStaff 删除人员
// @Summary      删除人员
// @Tags         Staff
// @Produce      json
// @Param        id path int true "人员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /staffs/{id} [delete]
// @Security     BearerAuth
func (c *StaffController) DeleteStaff() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	if err := staffService.DeleteStaff(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "人员删除成功", nil)
}

// 6. UpdateAvailability 更新人员可用性
// @Summary      更新人员可用性
// @Tags         Staff
// @Accept       json
// @Produce      json
// @Param        id path int true "人员ID"
// @Param        request body UpdateAvailabilityRequest true "可用性"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /staffs/{id}/availability [put]
// @Security     BearerAuth
func (c *StaffController) UpdateAvailability() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	staffService := c.Container.GetService("staff").(services.InterfaceStaffService)
	staff, err := staffService.UpdateAvailability(id, req.Availability)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "人员可用性更新成功", staff)
}

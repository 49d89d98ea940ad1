package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// AdminController 处理管理员账号相关的请求
type AdminController struct {
	BaseControllerImpl
}

// NewAdminController 创建一个新的管理员控制器
func (f *ControllerFactory) NewAdminController(ctx *gin.Context) *AdminController {
	return &AdminController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleAdminFunc 返回一个处理管理员请求的Gin处理函数
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewAdminController(ctx)

		switch method {
		case "getAdmins":
			controller.GetAdmins()
		case "getAdmin":
			controller.GetAdmin()
		case "createAdmin":
			controller.CreateAdmin()
		case "updateAdmin":
			controller.UpdateAdmin()
		case "deleteAdmin":
			controller.DeleteAdmin()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetAdmins 获取管理员列表
// @Summary      获取管理员列表
// @Tags         Admin
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /admins [get]
// @Security     BearerAuth
func (c *AdminController) GetAdmins() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	adminService := c.Container.GetService("admin").(*services.AdminService)
	admins, total, err := adminService.GetAllAdmins(page, pageSize)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      admins,
	})
}

// 2. GetAdmin 获取管理员详情
// @Summary      获取管理员详情
// @Tags         Admin
// @Produce      json
// @Param        id path int true "管理员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admins/{id} [get]
// @Security     BearerAuth
func (c *AdminController) GetAdmin() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	adminService := c.Container.GetService("admin").(*services.AdminService)
	admin, err := adminService.GetAdminByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", admin)
}

// 3. CreateAdmin 创建管理员
// @Summary      创建管理员
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body models.Admin true "管理员参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /admins [post]
// @Security     BearerAuth
func (c *AdminController) CreateAdmin() {
	var admin models.Admin
	if err := c.Context.ShouldBindJSON(&admin); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	adminService := c.Container.GetService("admin").(*services.AdminService)
	if err := adminService.CreateAdmin(&admin); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "管理员创建成功", gin.H{
		"id":       admin.ID,
		"username": admin.Username,
	})
}

// 4. UpdateAdmin 更新管理员
// @Summary      更新管理员
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "管理员ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /admins/{id} [put]
// @Security     BearerAuth
func (c *AdminController) UpdateAdmin() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	adminService := c.Container.GetService("admin").(*services.AdminService)
	admin, err := adminService.UpdateAdmin(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "管理员更新成功", gin.H{
		"id":       admin.ID,
		"username": admin.Username,
	})
}

// 5. DeleteAdmin 删除管理员
// @Summary      删除管理员
// @Description  系统至少保留一个管理员账号
// @Tags         Admin
// @Produce      json
// @Param        id path int true "管理员ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /admins/{id} [delete]
// @Security     BearerAuth
func (c *AdminController) DeleteAdmin() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	adminService := c.Container.GetService("admin").(*services.AdminService)
	if err := adminService.DeleteAdmin(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "管理员删除成功", nil)
}

package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// OrganizationController 处理响应机构相关的请求
type OrganizationController struct {
	BaseControllerImpl
}

// NewOrganizationController 创建一个新的机构控制器
func (f *ControllerFactory) NewOrganizationController(ctx *gin.Context) *OrganizationController {
	return &OrganizationController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleOrganizationFunc 返回一个处理机构请求的Gin处理函数
func HandleOrganizationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewOrganizationController(ctx)

		switch method {
		case "getOrganizations":
			controller.GetOrganizations()
		case "getOrganization":
			controller.GetOrganization()
		case "createOrganization":
			controller.CreateOrganization()
		case "updateOrganization":
			controller.UpdateOrganization()
		case "deleteOrganization":
			controller.DeleteOrganization()
		case "getOrganizationDivisions":
			controller.GetOrganizationDivisions()
		case "getOrganizationStaff":
			controller.GetOrganizationStaff()
		case "getOrganizationTickets":
			controller.GetOrganizationTickets()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetOrganizations 获取机构列表
// @Summary      获取机构列表
// @Tags         Organization
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /organizations [get]
func (c *OrganizationController) GetOrganizations() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	orgs, total, err := orgService.GetAllOrganizations(page, pageSize)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        orgs,
	})
}

// 2. GetOrganization 获取机构详情
// @Summary      获取机构详情
// @Tags         Organization
// @Produce      json
// @Param        id path int true "机构ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{id} [get]
func (c *OrganizationController) GetOrganization() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	org, err := orgService.GetOrganizationByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", org)
}

// 3. CreateOrganization 创建机构
// @Summary      创建机构
// @Tags         Organization
// @Accept       json
// @Produce      json
// @Param        request body models.Organization true "机构参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /organizations [post]
// @Security     BearerAuth
func (c *OrganizationController) CreateOrganization() {
	var org models.Organization
	if err := c.Context.ShouldBindJSON(&org); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	if err := orgService.CreateOrganization(&org); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "机构创建成功", org)
}

// 4. UpdateOrganization 更新机构
// @Summary      更新机构
// @Tags         Organization
// @Accept       json
// @Produce      json
// @Param        id path int true "机构ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{id} [put]
// @Security     BearerAuth
func (c *OrganizationController) UpdateOrganization() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	org, err := orgService.UpdateOrganization(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "机构更新成功", org)
}

// 5. DeleteOrganization 删除机构
// @Summary      删除机构
// @Tags         Organization
// @Produce      json
// @Param        id path int true "机构ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /organizations/{id} [delete]
// @Security     BearerAuth
func (c *OrganizationController) DeleteOrganization() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	if err := orgService.DeleteOrganization(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "机构删除成功", nil)
}

// 6. GetOrganizationDivisions 获取机构下属分队
// @Summary      获取机构下属分队
// @Tags         Organization
// @Produce      json
// @Param        id path int true "机构ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{id}/divisions [get]
func (c *OrganizationController) GetOrganizationDivisions() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	divisions, err := orgService.GetOrganizationDivisions(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"divisions": divisions,
		"total":     len(divisions),
	})
}

// 7. GetOrganizationStaff 获取机构人员
// @Summary      获取机构人员
// @Tags         Organization
// @Produce      json
// @Param        id path int true "机构ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{id}/staff [get]
func (c *OrganizationController) GetOrganizationStaff() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	staff, err := orgService.GetOrganizationStaff(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"staff": staff,
		"total": len(staff),
	})
}

// 8. GetOrganizationTickets 获取分配给机构的工单
// @Summary      获取分配给机构的工单
// @Tags         Organization
// @Produce      json
// @Param        id path int true "机构ID"
// @Param        status query string false "工单状态"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{id}/tickets [get]
// @Security     BearerAuth
func (c *OrganizationController) GetOrganizationTickets() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	orgService := c.Container.GetService("organization").(services.InterfaceOrganizationService)
	tickets, err := orgService.GetOrganizationTickets(id, c.Context.Query("status"))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

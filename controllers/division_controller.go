package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/models"
	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// DivisionController 处理分队相关的请求
type DivisionController struct {
	BaseControllerImpl
}

// NewDivisionController 创建一个新的分队控制器
func (f *ControllerFactory) NewDivisionController(ctx *gin.Context) *DivisionController {
	return &DivisionController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// HandleDivisionFunc 返回一个处理分队请求的Gin处理函数
func HandleDivisionFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewDivisionController(ctx)

		switch method {
		case "getDivisions":
			controller.GetDivisions()
		case "getDivision":
			controller.GetDivision()
		case "createDivision":
			controller.CreateDivision()
		case "updateDivision":
			controller.UpdateDivision()
		case "deleteDivision":
			controller.DeleteDivision()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetDivisions 获取分队列表
// @Summary      获取分队列表
// @Tags         Division
// @Produce      json
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Param        organization_id query int false "按机构过滤"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /divisions [get]
func (c *DivisionController) GetDivisions() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	orgID, _ := strconv.Atoi(c.Context.DefaultQuery("organization_id", "0"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	divisionService := c.Container.GetService("division").(services.InterfaceDivisionService)
	divisions, total, err := divisionService.GetAllDivisions(page, pageSize, uint(orgID))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        divisions,
	})
}

// 2. GetDivision 获取分队详情
// @Summary      获取分队详情
// @Tags         Division
// @Produce      json
// @Param        id path int true "分队ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /divisions/{id} [get]
func (c *DivisionController) GetDivision() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	divisionService := c.Container.GetService("division").(services.InterfaceDivisionService)
	division, err := divisionService.GetDivisionByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", division)
}

// 3. CreateDivision 创建分队
// @Summary      创建分队
// @Tags         Division
// @Accept       json
// @Produce      json
// @Param        request body models.Division true "分队参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /divisions [post]
// @Security     BearerAuth
func (c *DivisionController) CreateDivision() {
	var division models.Division
	if err := c.Context.ShouldBindJSON(&division); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	divisionService := c.Container.GetService("division").(services.InterfaceDivisionService)
	if err := divisionService.CreateDivision(&division); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "分队创建成功", division)
}

// 4. UpdateDivision 更新分队
// @Summary      更新分队
// @Tags         Division
// @Accept       json
// @Produce      json
// @Param        id path int true "分队ID"
// @Param        request body map[string]interface{} true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /divisions/{id} [put]
// @Security     BearerAuth
func (c *DivisionController) UpdateDivision() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.Context.ShouldBindJSON(&updates); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	divisionService := c.Container.GetService("division").(services.InterfaceDivisionService)
	division, err := divisionService.UpdateDivision(id, updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "分队更新成功", division)
}

// 5. DeleteDivision 删除分队
// @Summary      删除分队
// @Tags         Division
// @Produce      json
// @Param        id path int true "分队ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /divisions/{id} [delete]
// @Security     BearerAuth
func (c *DivisionController) DeleteDivision() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	divisionService := c.Container.GetService("division").(services.InterfaceDivisionService)
	if err := divisionService.DeleteDivision(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "分队删除成功", nil)
}

package controllers

import (
	"net/http"
	"strconv"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// TicketController 处理应急工单相关的请求
type TicketController struct {
	BaseControllerImpl
}

// NewTicketController 创建一个新的工单控制器
func (f *ControllerFactory) NewTicketController(ctx *gin.Context) *TicketController {
	return &TicketController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// UpdateTicketRequest 人工编辑工单请求
type UpdateTicketRequest struct {
	Updates map[string]interface{} `json:"updates" binding:"required"`
	Notes   string                 `json:"notes"`
}

// HandleTicketFunc 返回一个处理工单请求的Gin处理函数
func HandleTicketFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewTicketController(ctx)

		switch method {
		case "createTicket":
			controller.CreateTicket()
		case "getTickets":
			controller.GetTickets()
		case "getTicket":
			controller.GetTicket()
		case "getTicketsInBounds":
			controller.GetTicketsInBounds()
		case "updateTicket":
			controller.UpdateTicket()
		case "deleteTicket":
			controller.DeleteTicket()
		case "getTicketHistory":
			controller.GetTicketHistory()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// parseIDParam 解析路径中的工单ID
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(ctx, "无效的ID参数")
		return 0, false
	}
	return uint(id), true
}

// 1. CreateTicket 创建工单
// @Summary      创建应急工单
// @Description  接收报警创建工单，按类别和受影响人数自动计算优先级
// @Tags         Ticket
// @Accept       json
// @Produce      json
// @Param        request body services.CreateTicketRequest true "工单参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tickets [post]
func (c *TicketController) CreateTicket() {
	var req services.CreateTicketRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	ticket, err := ticketService.CreateTicket(&req)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "工单创建成功", ticket)
}

// 2. GetTickets 获取工单列表
// @Summary      获取工单列表
// @Description  按状态/类别/区域/优先级过滤，按优先级和创建时间排序
// @Tags         Ticket
// @Accept       json
// @Produce      json
// @Param        status query string false "工单状态"
// @Param        category query string false "类别"
// @Param        region query string false "区域: Western/Central/Vidarbha"
// @Param        priority query int false "优先级 1-5"
// @Param        page query int false "页码, 默认为1"
// @Param        page_size query int false "每页条数, 默认为10"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /tickets [get]
func (c *TicketController) GetTickets() {
	page, _ := strconv.Atoi(c.Context.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Context.DefaultQuery("page_size", "10"))
	priority, _ := strconv.Atoi(c.Context.DefaultQuery("priority", "0"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filter := services.TicketFilter{
		Status:   c.Context.Query("status"),
		Category: c.Context.Query("category"),
		Region:   c.Context.Query("region"),
		Priority: priority,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}

	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	tickets, total, err := ticketService.GetTickets(filter)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"data":        tickets,
	})
}

// 3. GetTicket 获取单个工单详情
// @Summary      获取工单详情
// @Tags         Ticket
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /tickets/{id} [get]
func (c *TicketController) GetTicket() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	ticket, err := ticketService.GetTicketByID(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", ticket)
}

// 4. GetTicketsInBounds 获取地图视口内的工单
// @Summary      获取地图视口内的工单
// @Description  按边界框查询工单，供地图展示
// @Tags         Ticket
// @Produce      json
// @Param        north query number true "北边界纬度"
// @Param        south query number true "南边界纬度"
// @Param        east query number true "东边界经度"
// @Param        west query number true "西边界经度"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /tickets/map [get]
func (c *TicketController) GetTicketsInBounds() {
	north, err1 := strconv.ParseFloat(c.Context.Query("north"), 64)
	south, err2 := strconv.ParseFloat(c.Context.Query("south"), 64)
	east, err3 := strconv.ParseFloat(c.Context.Query("east"), 64)
	west, err4 := strconv.ParseFloat(c.Context.Query("west"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		respondBadRequest(c.Context, "无效的边界参数")
		return
	}

	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	tickets, err := ticketService.GetTicketsInBounds(north, south, east, west)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// 5. UpdateTicket 人工编辑工单
// @Summary      人工编辑工单
// @Description  运营人员直接修改工单字段，每个变更字段写一条历史记录
// @Tags         Ticket
// @Accept       json
// @Produce      json
// @Param        id path int true "工单ID"
// @Param        request body UpdateTicketRequest true "变更字段"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id} [put]
// @Security     BearerAuth
func (c *TicketController) UpdateTicket() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req UpdateTicketRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	actor := actorFromContext(c.Context)
	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	ticket, err := ticketService.UpdateTicket(id, actor, req.Updates)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "工单更新成功", ticket)
}

// 6. DeleteTicket 删除工单
// @Summary      删除工单
// @Tags         Ticket
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /tickets/{id} [delete]
// @Security     BearerAuth
func (c *TicketController) DeleteTicket() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	if err := ticketService.DeleteTicket(id); err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "工单删除成功", nil)
}

// 7. GetTicketHistory 获取工单变更历史
// @Summary      获取工单变更历史
// @Description  返回工单的追加式变更记录，最新在前
// @Tags         Ticket
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /tickets/{id}/history [get]
func (c *TicketController) GetTicketHistory() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	// 工单必须存在
	ticketService := c.Container.GetService("ticket").(services.InterfaceTicketService)
	if _, err := ticketService.GetTicketByID(id); err != nil {
		respondError(c.Context, err)
		return
	}

	historyService := c.Container.GetService("history").(services.InterfaceHistoryService)
	history, err := historyService.GetTicketHistory(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", gin.H{
		"history": history,
		"total":   len(history),
	})
}

// actorFromContext 从JWT中间件注入的上下文取操作者标识
func actorFromContext(ctx *gin.Context) string {
	if username, exists := ctx.Get("username"); exists {
		if s, ok := username.(string); ok && s != "" {
			return s
		}
	}
	return "operator"
}

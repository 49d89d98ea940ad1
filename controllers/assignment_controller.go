package controllers

import (
	"net/http"
	"time"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// AssignmentController 处理工单分配状态机相关的请求
type AssignmentController struct {
	BaseControllerImpl
}

// NewAssignmentController 创建一个新的分配控制器
func (f *ControllerFactory) NewAssignmentController(ctx *gin.Context) *AssignmentController {
	return &AssignmentController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// AcceptAssignmentRequest 接受分配请求
type AcceptAssignmentRequest struct {
	OrganizationID      uint       `json:"organization_id" binding:"required" example:"1"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

// RejectAssignmentRequest 拒绝分配请求
type RejectAssignmentRequest struct {
	OrganizationID uint   `json:"organization_id" binding:"required" example:"1"`
	Reason         string `json:"reason" example:"no rescue boats available"`
}

// CancelTicketRequest 取消工单请求
type CancelTicketRequest struct {
	Reason string `json:"reason" example:"duplicate report"`
}

// DeployTeamRequest 人工派遣响应队伍请求
type DeployTeamRequest struct {
	OrganizationID      uint       `json:"organization_id" binding:"required" example:"1"`
	StaffIDs            []uint     `json:"staff_ids"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

// HandleAssignmentFunc 返回一个处理分配请求的Gin处理函数
func HandleAssignmentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewAssignmentController(ctx)

		switch method {
		case "getRecommendation":
			controller.GetRecommendation()
		case "propose":
			controller.Propose()
		case "accept":
			controller.Accept()
		case "reject":
			controller.Reject()
		case "complete":
			controller.Complete()
		case "cancel":
			controller.Cancel()
		case "deploy":
			controller.Deploy()
		case "responseStatus":
			controller.ResponseStatus()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. GetRecommendation 获取分配推荐
// @Summary      获取分配推荐
// @Description  对工单的候选机构/人员/分队做一次完整排名，不做任何状态变更
// @Tags         Assignment
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /tickets/{id}/recommendation [get]
// @Security     BearerAuth
func (c *AssignmentController) GetRecommendation() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	proposal, err := assignmentService.GetRecommendation(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}
	if proposal == nil {
		respondOK(c.Context, "当前没有可用候选机构", nil)
		return
	}

	respondOK(c.Context, "成功", proposal)
}

// 2. Propose 发起分配提议
// @Summary      发起分配提议
// @Description  对 Pending 工单发起提议并启动接受窗口，候选池为空时保持 Pending
// @Tags         Assignment
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id}/propose [post]
// @Security     BearerAuth
func (c *AssignmentController) Propose() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	proposal, err := assignmentService.ProposeAssignment(id, actorFromContext(c.Context))
	if err != nil {
		respondError(c.Context, err)
		return
	}
	if proposal == nil {
		respondOK(c.Context, "没有可用候选机构，工单保持 Pending", nil)
		return
	}

	respondOK(c.Context, "分配提议已发出", proposal)
}

// 3. Accept 机构接受分配
// @Summary      接受分配
// @Description  被提议的机构在接受窗口内接受分配，工单进入 In Progress
// @Tags         Assignment
// @Accept       json
// @Produce      json
// @Param        id path int true "工单ID"
// @Param        request body AcceptAssignmentRequest true "接受参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id}/accept [post]
// @Security     BearerAuth
func (c *AssignmentController) Accept() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req AcceptAssignmentRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	ticket, err := assignmentService.AcceptAssignment(id, req.OrganizationID, req.EstimatedCompletion, actorFromContext(c.Context))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "分配已接受", ticket)
}

// 4. Reject 机构拒绝分配
// @Summary      拒绝分配
// @Description  被提议的机构拒绝分配，工单回到 Pending 并立即重新提议
// @Tags         Assignment
// @Accept       json
// @Produce      json
// @Param        id path int true "工单ID"
// @Param        request body RejectAssignmentRequest true "拒绝参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id}/reject [post]
// @Security     BearerAuth
func (c *AssignmentController) Reject() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req RejectAssignmentRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	ticket, err := assignmentService.RejectAssignment(id, req.OrganizationID, req.Reason, actorFromContext(c.Context))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "分配已拒绝，工单进入重新分配", ticket)
}

// 5. Complete 完成工单
// @Summary      完成工单
// @Tags         Assignment
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id}/complete [post]
// @Security     BearerAuth
func (c *AssignmentController) Complete() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	ticket, err := assignmentService.CompleteTicket(id, actorFromContext(c.Context))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "工单已完成", ticket)
}

// 6. Cancel 取消工单
// @Summary      取消工单
// @Tags         Assignment
// @Accept       json
// @Produce      json
// @Param        id path int true "工单ID"
// @Param        request body CancelTicketRequest false "取消原因"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id}/cancel [post]
// @Security     BearerAuth
func (c *AssignmentController) Cancel() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req CancelTicketRequest
	// 取消原因可选
	_ = c.Context.ShouldBindJSON(&req)

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	ticket, err := assignmentService.CancelTicket(id, req.Reason, actorFromContext(c.Context))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "工单已取消", ticket)
}

// 7. Deploy 人工派遣响应队伍
// @Summary      人工派遣响应队伍
// @Description  跳过接受窗口，直接派遣机构和人员，工单进入 In Progress
// @Tags         Assignment
// @Accept       json
// @Produce      json
// @Param        id path int true "工单ID"
// @Param        request body DeployTeamRequest true "派遣参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  ErrorResponse
// @Router       /tickets/{id}/deploy [post]
// @Security     BearerAuth
func (c *AssignmentController) Deploy() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	var req DeployTeamRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	ticket, err := assignmentService.DeployResponseTeam(id, req.OrganizationID, req.StaffIDs, req.EstimatedCompletion, actorFromContext(c.Context))
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "响应队伍已派遣", ticket)
}

// 8. ResponseStatus 获取响应状态
// @Summary      获取工单响应状态
// @Description  返回工单状态、接受窗口剩余时间和是否超期
// @Tags         Assignment
// @Produce      json
// @Param        id path int true "工单ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /tickets/{id}/response-status [get]
func (c *AssignmentController) ResponseStatus() {
	id, ok := parseIDParam(c.Context, "id")
	if !ok {
		return
	}

	assignmentService := c.Container.GetService("assignment").(services.InterfaceAssignmentService)
	status, err := assignmentService.GetResponseStatus(id)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "成功", status)
}

package controllers

import (
	"net/http"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// NotificationController 处理运营广播相关的请求
type NotificationController struct {
	BaseControllerImpl
}

// NewNotificationController 创建一个新的通知控制器
func (f *ControllerFactory) NewNotificationController(ctx *gin.Context) *NotificationController {
	return &NotificationController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// BroadcastRequest 广播请求
type BroadcastRequest struct {
	MessageType string      `json:"message_type" binding:"required" example:"weather_alert"`
	Level       string      `json:"level" binding:"required" example:"warning"`
	Message     string      `json:"message" binding:"required" example:"未来6小时有强降雨"`
	Data        interface{} `json:"data"`
}

// HandleNotificationFunc 返回一个处理通知请求的Gin处理函数
func HandleNotificationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewNotificationController(ctx)

		switch method {
		case "broadcast":
			controller.Broadcast()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. Broadcast 向所有在线指挥终端广播消息
// @Summary      发送运营广播
// @Description  通过MQTT向指挥终端推送提示或告警
// @Tags         Notification
// @Accept       json
// @Produce      json
// @Param        request body BroadcastRequest true "广播内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /notifications/broadcast [post]
// @Security     BearerAuth
func (c *NotificationController) Broadcast() {
	var req BroadcastRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	notificationService := c.Container.GetService("notification").(services.InterfaceNotificationService)
	if err := notificationService.PublishBroadcast(req.MessageType, req.Level, req.Message, req.Data); err != nil {
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "广播发送失败: " + err.Error(),
			"data":    nil,
		})
		return
	}

	respondOK(c.Context, "广播发送成功", nil)
}

package controllers

import (
	"errors"
	"net/http"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// BaseController 是所有控制器的基础接口
type BaseController interface {
	// 获取服务容器
	GetContainer() *container.ServiceContainer
	// 获取Gin上下文
	GetContext() *gin.Context
}

// BaseControllerImpl 是控制器的基础实现
type BaseControllerImpl struct {
	Container *container.ServiceContainer
	Context   *gin.Context
}

// GetContainer 实现 BaseController 接口
func (c *BaseControllerImpl) GetContainer() *container.ServiceContainer {
	return c.Container
}

// GetContext 实现 BaseController 接口
func (c *BaseControllerImpl) GetContext() *gin.Context {
	return c.Context
}

// ControllerFactory 用于创建控制器的工厂
type ControllerFactory struct {
	Container *container.ServiceContainer
}

// NewControllerFactory 创建一个新的控制器工厂
func NewControllerFactory(container *container.ServiceContainer) *ControllerFactory {
	return &ControllerFactory{
		Container: container,
	}
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"400"`
	Message string      `json:"message" example:"validation error"`
	Data    interface{} `json:"data"`
}

// statusForError 将服务层错误分类映射到HTTP状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMismatchedAssignee):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrWindowExpired):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError 按统一信封返回错误
func respondError(ctx *gin.Context, err error) {
	status := statusForError(err)
	ctx.JSON(status, gin.H{
		"code":    status,
		"message": err.Error(),
		"data":    nil,
	})
}

// respondOK 按统一信封返回成功数据
func respondOK(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

// respondBadRequest 参数绑定失败的快捷返回
func respondBadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": message,
		"data":    nil,
	})
}

package controllers

import (
	"net/http"

	"resq-http-service/services"
	"resq-http-service/services/container"

	"github.com/gin-gonic/gin"
)

// JWTController 处理登录与令牌相关的请求
type JWTController struct {
	BaseControllerImpl
}

// NewJWTController 创建一个新的认证控制器
func (f *ControllerFactory) NewJWTController(ctx *gin.Context) *JWTController {
	return &JWTController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// HandleJWTFunc 返回一个处理认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		factory := NewControllerFactory(container)
		controller := factory.NewJWTController(ctx)

		switch method {
		case "login":
			controller.Login()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的方法",
				"data":    nil,
			})
		}
	}
}

// 1. Login 管理员登录
// @Summary      管理员登录
// @Description  校验用户名密码并签发JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录参数"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c.Context, "无效的请求参数: "+err.Error())
		return
	}

	adminService := c.Container.GetService("admin").(*services.AdminService)
	admin, err := adminService.Authenticate(req.Username, req.Password)
	if err != nil {
		c.Context.JSON(http.StatusUnauthorized, gin.H{
			"code":    401,
			"message": "用户名或密码错误",
			"data":    nil,
		})
		return
	}

	jwtService := c.Container.GetService("jwt").(*services.JWTService)
	token, err := jwtService.GenerateToken(admin.ID, admin.Username, "admin", nil)
	if err != nil {
		respondError(c.Context, err)
		return
	}

	respondOK(c.Context, "登录成功", gin.H{
		"token": token,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

package controller

import (
	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/middleware"
	"shop_admin_v1_202608/internal/service"
)

// AuthController 管理员认证接口
type AuthController struct {
	adminService *service.AdminService
}

func NewAuthController(adminService *service.AdminService) *AuthController {
	return &AuthController{adminService: adminService}
}

// Login 管理员登录
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tokens, err := ctrl.adminService.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tokens)
}

// Refresh 刷新令牌
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tokens, err := ctrl.adminService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tokens)
}

// Profile 当前管理员信息
func (ctrl *AuthController) Profile(c *gin.Context) {
	admin, err := ctrl.adminService.Profile(c.Request.Context(), middleware.GetAdminID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, admin)
}

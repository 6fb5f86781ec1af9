package controller

import (
	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/service"
)

// MenuController 菜单管理接口
type MenuController struct {
	menuService *service.MenuService
}

func NewMenuController(menuService *service.MenuService) *MenuController {
	return &MenuController{menuService: menuService}
}

// ==================== 查询接口 ====================

// GetTree 获取菜单树
func (ctrl *MenuController) GetTree(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	tree, err := ctrl.menuService.GetTree(c.Request.Context(), includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tree)
}

// Get 菜单详情
func (ctrl *MenuController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	menu, err := ctrl.menuService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, menu)
}

// ==================== 写入接口 ====================

// Create 创建菜单项
func (ctrl *MenuController) Create(c *gin.Context) {
	var req dto.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	menu, err := ctrl.menuService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, menu)
}

// Update 更新菜单项
func (ctrl *MenuController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	menu, err := ctrl.menuService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, menu)
}

// Delete 删除菜单项
func (ctrl *MenuController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := ctrl.menuService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Reorder 批量排序
func (ctrl *MenuController) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.menuService.Reorder(c.Request.Context(), req.Items); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

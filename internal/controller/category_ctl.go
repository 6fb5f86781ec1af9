package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/service"
)

// CategoryController 分类管理接口
type CategoryController struct {
	categoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// ==================== 查询接口 ====================

// GetTree 获取分类树
func (ctrl *CategoryController) GetTree(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	tree, err := ctrl.categoryService.GetTree(c.Request.Context(), includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tree)
}

// GetSubtree 获取子树
func (ctrl *CategoryController) GetSubtree(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	includeInactive := c.Query("include_inactive") == "true"

	subtree, err := ctrl.categoryService.GetSubtree(c.Request.Context(), id, includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, subtree)
}

// List 分页列表
func (ctrl *CategoryController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	includeInactive := c.Query("include_inactive") == "true"

	categories, total, err := ctrl.categoryService.List(c.Request.Context(), page, pageSize, includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, dto.PagedResponse{Items: categories, Total: total, Page: page, PageSize: pageSize})
}

// Search 按名称搜索
func (ctrl *CategoryController) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	includeInactive := c.Query("include_inactive") == "true"

	categories, err := ctrl.categoryService.Search(c.Request.Context(), keyword, includeInactive)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, categories)
}

// Stats 分类统计
func (ctrl *CategoryController) Stats(c *gin.Context) {
	stats, err := ctrl.categoryService.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

// Get 分类详情
func (ctrl *CategoryController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	category, err := ctrl.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, category)
}

// GetBySlug 按 slug 查询
func (ctrl *CategoryController) GetBySlug(c *gin.Context) {
	category, err := ctrl.categoryService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, category)
}

// ==================== 写入接口 ====================

// Create 创建分类
func (ctrl *CategoryController) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := ctrl.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, category)
}

// Update 更新分类
func (ctrl *CategoryController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := ctrl.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, category)
}

// Delete 删除分类
func (ctrl *CategoryController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := ctrl.categoryService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Reorder 批量排序
func (ctrl *CategoryController) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.categoryService.Reorder(c.Request.Context(), req.Items); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

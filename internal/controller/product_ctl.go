package controller

import (
	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/service"
)

// ProductController 商品管理接口
type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== 查询接口 ====================

// List 商品列表
func (ctrl *ProductController) List(c *gin.Context) {
	var query dto.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), &query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, dto.PagedResponse{Items: products, Total: total, Page: query.Page, PageSize: query.PageSize})
}

// Get 商品详情
func (ctrl *ProductController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	product, err := ctrl.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

// GetBySlug 按 slug 查询（店面侧，累加浏览数）
func (ctrl *ProductController) GetBySlug(c *gin.Context) {
	product, err := ctrl.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

// ==================== 写入接口 ====================

// Create 创建商品
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, product)
}

// Update 更新商品
func (ctrl *ProductController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

// Delete 删除商品
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

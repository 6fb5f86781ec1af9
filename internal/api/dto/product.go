package dto

import "shop_admin_v1_202608/internal/model"

// CreateProductRequest 创建商品
type CreateProductRequest struct {
	Name             string `json:"name" binding:"required,max=255"`
	Slug             string `json:"slug" binding:"omitempty,max=100"`
	Description      string `json:"description"`
	ShortDescription string `json:"short_description" binding:"omitempty,max=500"`

	CategoryID       *int64  `json:"category_id"`
	ExtraCategoryIDs []int64 `json:"extra_category_ids"`

	PriceCurrent float64 `json:"price_current" binding:"required,gt=0"`
	PriceOld     float64 `json:"price_old" binding:"omitempty,gte=0"`
	Currency     string  `json:"currency" binding:"omitempty,max=10"`

	Stock int    `json:"stock" binding:"omitempty,gte=0"`
	SKU   string `json:"sku" binding:"omitempty,max=100"`

	Variants   []model.ProductVariant   `json:"variants"`
	Attributes []model.ProductAttribute `json:"attributes"`
	Images     []model.ProductImage     `json:"images"`

	IsActive  *bool `json:"is_active"`
	SortOrder int   `json:"sort_order"`

	MetaTitle       string `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription string `json:"meta_description" binding:"omitempty,max=500"`
}

// UpdateProductRequest 更新商品，nil 字段不修改
type UpdateProductRequest struct {
	Name             *string `json:"name" binding:"omitempty,max=255"`
	Slug             *string `json:"slug" binding:"omitempty,max=100"`
	Description      *string `json:"description"`
	ShortDescription *string `json:"short_description" binding:"omitempty,max=500"`

	CategoryID       *int64   `json:"category_id"`
	ClearCategory    bool     `json:"clear_category"`
	ExtraCategoryIDs *[]int64 `json:"extra_category_ids"`

	PriceCurrent *float64 `json:"price_current" binding:"omitempty,gt=0"`
	PriceOld     *float64 `json:"price_old" binding:"omitempty,gte=0"`
	Currency     *string  `json:"currency" binding:"omitempty,max=10"`

	Stock *int    `json:"stock" binding:"omitempty,gte=0"`
	SKU   *string `json:"sku" binding:"omitempty,max=100"`

	Variants   *[]model.ProductVariant   `json:"variants"`
	Attributes *[]model.ProductAttribute `json:"attributes"`
	Images     *[]model.ProductImage     `json:"images"`

	IsActive  *bool `json:"is_active"`
	SortOrder *int  `json:"sort_order"`

	MetaTitle       *string `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription *string `json:"meta_description" binding:"omitempty,max=500"`
}

// ProductListQuery 商品列表查询参数
type ProductListQuery struct {
	PageQuery
	CategoryID      int64  `form:"category_id"`
	Keyword         string `form:"keyword"`
	IncludeInactive bool   `form:"include_inactive"`
}

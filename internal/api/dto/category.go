package dto

import "shop_admin_v1_202608/internal/model"

// CreateCategoryRequest 创建分类
// Slug 为空时由 Name 自动生成
type CreateCategoryRequest struct {
	Name           string  `json:"name" binding:"required,max=255"`
	Slug           string  `json:"slug" binding:"omitempty,max=100"`
	ParentID       *int64  `json:"parent_id"`
	ExtraParentIDs []int64 `json:"extra_parent_ids"`
	SortOrder      int     `json:"sort_order"`
	IsActive       *bool   `json:"is_active"`

	Description string `json:"description"`
	Image       string `json:"image" binding:"omitempty,max=500"`
	Icon        string `json:"icon" binding:"omitempty,max=500"`

	MetaTitle       string `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription string `json:"meta_description" binding:"omitempty,max=500"`
	MetaKeywords    string `json:"meta_keywords" binding:"omitempty,max=500"`
}

// UpdateCategoryRequest 更新分类，nil 字段不修改
type UpdateCategoryRequest struct {
	Name           *string  `json:"name" binding:"omitempty,max=255"`
	Slug           *string  `json:"slug" binding:"omitempty,max=100"`
	ParentID       *int64   `json:"parent_id"`
	ClearParent    bool     `json:"clear_parent"` // 显式置为根节点
	ExtraParentIDs *[]int64 `json:"extra_parent_ids"`
	SortOrder      *int     `json:"sort_order"`
	IsActive       *bool    `json:"is_active"`

	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,max=500"`
	Icon        *string `json:"icon" binding:"omitempty,max=500"`

	MetaTitle       *string `json:"meta_title" binding:"omitempty,max=255"`
	MetaDescription *string `json:"meta_description" binding:"omitempty,max=500"`
	MetaKeywords    *string `json:"meta_keywords" binding:"omitempty,max=500"`
}

// CategoryTree 分类树节点
type CategoryTree struct {
	model.Category
	Children []*CategoryTree `json:"children"`
}

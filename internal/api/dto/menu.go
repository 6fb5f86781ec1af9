package dto

import "shop_admin_v1_202608/internal/model"

// CreateMenuRequest 创建菜单项
type CreateMenuRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Slug      string `json:"slug" binding:"omitempty,max=100"`
	ParentID  *int64 `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`

	URL         string `json:"url" binding:"omitempty,max=500"`
	Icon        string `json:"icon" binding:"omitempty,max=500"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"omitempty,oneof=link category page custom"`
	IsNewTab    bool   `json:"is_new_tab"`
}

// UpdateMenuRequest 更新菜单项，nil 字段不修改
type UpdateMenuRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	ParentID    *int64  `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`

	URL         *string `json:"url" binding:"omitempty,max=500"`
	Icon        *string `json:"icon" binding:"omitempty,max=500"`
	Description *string `json:"description"`
	Type        *string `json:"type" binding:"omitempty,oneof=link category page custom"`
	IsNewTab    *bool   `json:"is_new_tab"`
}

// MenuTree 菜单树节点
type MenuTree struct {
	model.Menu
	Children []*MenuTree `json:"children"`
}

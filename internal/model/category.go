package model

import "gorm.io/datatypes"

// Category 商品分类（树形结构）
// parent_id 边构成森林，每次换父都做环检测
// extra_parent_ids 是交叉挂载的次级父分类，不参与环检测（沿用旧系统行为）
type Category struct {
	BaseModel

	Name string `gorm:"size:255;not null;index" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	// 层级
	ParentID       *int64                     `gorm:"index" json:"parent_id"`
	ExtraParentIDs datatypes.JSONSlice[int64] `json:"extra_parent_ids"`

	// 排序与状态
	SortOrder int  `gorm:"default:0;index" json:"sort_order"`
	IsActive  bool `gorm:"default:true;index" json:"is_active"`

	// 展示字段
	Description string `gorm:"type:text" json:"description"`
	Image       string `gorm:"size:500" json:"image"`
	Icon        string `gorm:"size:500" json:"icon"`

	// SEO
	MetaTitle       string `gorm:"size:255" json:"meta_title"`
	MetaDescription string `gorm:"size:500" json:"meta_description"`
	MetaKeywords    string `gorm:"size:500" json:"meta_keywords"`
}

func (Category) TableName() string {
	return "categories"
}

// HasExtraParent 是否把 id 列为次级父分类
func (c *Category) HasExtraParent(id int64) bool {
	for _, p := range c.ExtraParentIDs {
		if p == id {
			return true
		}
	}
	return false
}

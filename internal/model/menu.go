package model

// ==================== 菜单类型常量 ====================

const (
	MenuTypeLink     = "link"     // 普通链接
	MenuTypeCategory = "category" // 指向分类
	MenuTypePage     = "page"     // 静态页面
	MenuTypeCustom   = "custom"   // 自定义
)

// Menu 导航菜单项（树形结构，单父边）
type Menu struct {
	BaseModel

	Name string `gorm:"size:255;not null;index" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	ParentID *int64 `gorm:"index" json:"parent_id"`

	SortOrder int  `gorm:"default:0;index" json:"sort_order"`
	IsActive  bool `gorm:"default:true;index" json:"is_active"`

	// 展示字段
	URL         string `gorm:"size:500" json:"url"`
	Icon        string `gorm:"size:500" json:"icon"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"size:32;default:link" json:"type"`
	IsNewTab    bool   `gorm:"default:false" json:"is_new_tab"`
}

func (Menu) TableName() string {
	return "menus"
}

package model

import (
	"gorm.io/datatypes"
)

// ==================== 子结构 ====================

// ProductPrice 商品价格
type ProductPrice struct {
	Current  float64 `json:"current"`
	Old      float64 `json:"old,omitempty"` // 旧价（划线价），0 表示无
	Currency string  `json:"currency"`
}

// ProductVariant 商品变体（如尺寸、颜色组合）
type ProductVariant struct {
	Name     string       `json:"name"`
	Price    ProductPrice `json:"price"`
	SKU      string       `json:"sku,omitempty"`
	Stock    int          `json:"stock"`
	IsActive bool         `json:"is_active"`
}

// ProductAttribute 商品属性/规格
type ProductAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// ProductImage 商品图片
type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	SortOrder int    `json:"sort_order"`
	IsMain    bool   `json:"is_main"`
}

// ==================== Product 商品 ====================

// Product 商品
// 下单时价格会被快照进订单行，后续改价不影响历史订单
type Product struct {
	BaseModel

	Name             string `gorm:"size:255;not null;index" json:"name"`
	Slug             string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description      string `gorm:"type:text" json:"description"`
	ShortDescription string `gorm:"size:500" json:"short_description"`

	// 分类（主分类 + 附加分类，JSON 数组存储）
	CategoryID       *int64                     `gorm:"index" json:"category_id"`
	ExtraCategoryIDs datatypes.JSONSlice[int64] `json:"extra_category_ids"`

	// 价格
	PriceCurrent float64 `gorm:"not null" json:"price_current"`
	PriceOld     float64 `gorm:"default:0" json:"price_old"`
	Currency     string  `gorm:"size:10;default:UAH" json:"currency"`

	// 库存与标识
	Stock int    `gorm:"default:0" json:"stock"`
	SKU   string `gorm:"size:100;index" json:"sku"`

	// 嵌套数据（JSON 序列化存储）
	Variants   []ProductVariant   `gorm:"serializer:json" json:"variants"`
	Attributes []ProductAttribute `gorm:"serializer:json" json:"attributes"`
	Images     []ProductImage     `gorm:"serializer:json" json:"images"`

	// 状态与排序
	IsActive  bool `gorm:"default:true;index" json:"is_active"`
	SortOrder int  `gorm:"default:0;index" json:"sort_order"`
	Views     int  `gorm:"default:0" json:"views"`

	// SEO
	MetaTitle       string `gorm:"size:255" json:"meta_title"`
	MetaDescription string `gorm:"size:500" json:"meta_description"`
}

func (Product) TableName() string {
	return "products"
}

// MainImageURL 主图地址，没有标记主图时取第一张
func (p *Product) MainImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	for _, img := range p.Images {
		if img.IsMain {
			return img.URL
		}
	}
	return p.Images[0].URL
}

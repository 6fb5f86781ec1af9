package dto

import "shop_admin_v1_202608/internal/model"

// CartKey 购物车归属键，session_id 与 user_id 恰好提供其一
type CartKey struct {
	SessionID string `form:"session_id" json:"session_id"`
	UserID    int64  `form:"user_id" json:"user_id"`
}

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	CartKey
	ProductID  int64                  `json:"product_id" binding:"required"`
	Quantity   int                    `json:"quantity" binding:"required,gt=0"`
	Variant    string                 `json:"variant" binding:"omitempty,max=255"`
	Attributes map[string]interface{} `json:"attributes"`
}

// UpdateCartItemRequest 修改购物车行数量，数量 <= 0 等同删除
type UpdateCartItemRequest struct {
	CartKey
	Quantity int    `json:"quantity"`
	Variant  string `json:"variant" binding:"omitempty,max=255"`
}

// CartItemView 购物车行（补充商品实时信息）
type CartItemView struct {
	model.CartItem
	ProductName  string  `json:"product_name"`
	ProductSlug  string  `json:"product_slug"`
	ProductImage string  `json:"product_image"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	LineTotal    float64 `json:"line_total"`
}

// CartView 购物车视图
type CartView struct {
	ID        int64          `json:"id"`
	SessionID *string        `json:"session_id"`
	UserID    *int64         `json:"user_id"`
	Items     []CartItemView `json:"items"`
	PromoCode string         `json:"promo_code"`
	Subtotal  float64        `json:"subtotal"`
	Currency  string         `json:"currency"`
}

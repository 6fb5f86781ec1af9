package model

import (
	"time"

	"gorm.io/datatypes"
)

// CartTTL 购物车默认有效期（创建时设定，访问不续期）
const CartTTL = 30 * 24 * time.Hour

// Cart 购物车
// 以 session_id 或 user_id 二选一作为归属键，每个键至多一条
type Cart struct {
	BaseModel

	SessionID *string `gorm:"size:128;uniqueIndex" json:"session_id"`
	UserID    *int64  `gorm:"uniqueIndex" json:"user_id"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`

	PromoCode string    `gorm:"size:64" json:"promo_code"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// IsExpired 是否已过期
func (c *Cart) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CartItem 购物车行
// 只存商品引用和数量，价格在展示/下单时再取
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"index;not null" json:"cart_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductID  int64             `gorm:"index;not null" json:"product_id"`
	Quantity   int               `gorm:"not null" json:"quantity"`
	Variant    string            `gorm:"size:255" json:"variant"`
	Attributes datatypes.JSONMap `json:"attributes"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

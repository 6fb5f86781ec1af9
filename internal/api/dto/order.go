package dto

import (
	"time"

	"shop_admin_v1_202608/internal/model"
)

// OrderItemInput 下单商品行，价格由服务端按当前商品价计算
type OrderItemInput struct {
	ProductID  int64                  `json:"product_id" binding:"required"`
	Quantity   int                    `json:"quantity" binding:"required,gt=0"`
	Variant    string                 `json:"variant" binding:"omitempty,max=255"`
	Attributes map[string]interface{} `json:"attributes"`
}

// CreateOrderRequest 创建订单
type CreateOrderRequest struct {
	Items []OrderItemInput `json:"items" binding:"required,min=1,dive"`

	Customer struct {
		FirstName string `json:"first_name" binding:"required,max=128"`
		LastName  string `json:"last_name" binding:"omitempty,max=128"`
		Email     string `json:"email" binding:"omitempty,email,max=255"`
		Phone     string `json:"phone" binding:"required,max=64"`
		Company   string `json:"company" binding:"omitempty,max=255"`
	} `json:"customer" binding:"required"`

	DeliveryAddress *model.DeliveryAddress `json:"delivery_address"`

	PaymentMethod  string `json:"payment_method" binding:"required,oneof=cash card online bank_transfer"`
	DeliveryMethod string `json:"delivery_method" binding:"required,oneof=pickup courier post express"`

	DeliveryCost float64 `json:"delivery_cost" binding:"omitempty,gte=0"`
	Discount     float64 `json:"discount" binding:"omitempty,gte=0"`

	Notes     string                 `json:"notes"`
	PromoCode string                 `json:"promo_code" binding:"omitempty,max=64"`
	Metadata  map[string]interface{} `json:"metadata"`

	// 下单成功后按此键清空购物车
	SessionID string `json:"session_id" binding:"omitempty,max=128"`
}

// UpdateOrderRequest 更新订单，nil 字段不修改
type UpdateOrderRequest struct {
	Status         *string  `json:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	IsPaid         *bool    `json:"is_paid"`
	TrackingNumber *string  `json:"tracking_number" binding:"omitempty,max=128"`
	Notes          *string  `json:"notes"`
	DeliveryCost   *float64 `json:"delivery_cost" binding:"omitempty,gte=0"`
	Discount       *float64 `json:"discount" binding:"omitempty,gte=0"`
}

// OrderListQuery 订单列表查询参数
type OrderListQuery struct {
	PageQuery
	Status           string     `form:"status"`
	PaymentMethod    string     `form:"payment_method"`
	Search           string     `form:"search"`
	IncludeCancelled bool       `form:"include_cancelled"`
	DateFrom         *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo           *time.Time `form:"date_to" time_format:"2006-01-02"`
}

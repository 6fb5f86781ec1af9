package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

const (
	OrderStatusPending    = "pending"    // 待处理
	OrderStatusConfirmed  = "confirmed"  // 已确认
	OrderStatusProcessing = "processing" // 处理中
	OrderStatusShipped    = "shipped"    // 已发货
	OrderStatusDelivered  = "delivered"  // 已签收
	OrderStatusCancelled  = "cancelled"  // 已取消（终态）
	OrderStatusRefunded   = "refunded"   // 已退款（终态）
)

// OrderStatusFlow 正向流转顺序
// 注意：Update 接口目前不强制校验流转，管理员可以任意修正状态；
// 需要校验的调用方自行使用 CanTransition
var OrderStatusFlow = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// IsTerminalStatus 是否终态
func IsTerminalStatus(status string) bool {
	return status == OrderStatusCancelled || status == OrderStatusRefunded
}

// CanTransition 按标准流程判断状态是否可达：
// 正向只能逐级推进，cancelled/refunded 可从任意非终态进入
func CanTransition(from, to string) bool {
	if IsTerminalStatus(from) {
		return false
	}
	if IsTerminalStatus(to) {
		return true
	}
	fromIdx, toIdx := -1, -1
	for i, s := range OrderStatusFlow {
		if s == from {
			fromIdx = i
		}
		if s == to {
			toIdx = i
		}
	}
	return fromIdx >= 0 && toIdx == fromIdx+1
}

// ==================== 支付/配送方式 ====================

const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodOnline       = "online"
	PaymentMethodBankTransfer = "bank_transfer"
)

const (
	DeliveryMethodPickup  = "pickup"
	DeliveryMethodCourier = "courier"
	DeliveryMethodPost    = "post"
	DeliveryMethodExpress = "express"
)

// ==================== 子结构 ====================

// CustomerInfo 客户信息
type CustomerInfo struct {
	FirstName string `gorm:"size:128" json:"first_name"`
	LastName  string `gorm:"size:128" json:"last_name"`
	Email     string `gorm:"size:255;index" json:"email"`
	Phone     string `gorm:"size:64;index" json:"phone"`
	Company   string `gorm:"size:255" json:"company,omitempty"`
}

// DeliveryAddress 收货地址
type DeliveryAddress struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Building   string `json:"building,omitempty"`
	Apartment  string `json:"apartment,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// CardDetails 支付卡信息
// 旧系统把这些塞在 metadata/notes 里，这里解析成专用结构，
// 日志中一律脱敏输出
type CardDetails struct {
	CardNumber     string `json:"cardNumber,omitempty"`
	CVC            string `json:"cvc,omitempty"`
	Expiry         string `json:"expiry,omitempty"`
	CardholderName string `json:"cardholderName,omitempty"`
}

// Empty 是否无任何字段
func (c *CardDetails) Empty() bool {
	return c == nil || (c.CardNumber == "" && c.CVC == "" && c.Expiry == "" && c.CardholderName == "")
}

// Masked 脱敏表示，仅用于日志
func (c *CardDetails) Masked() string {
	if c.Empty() {
		return ""
	}
	n := c.CardNumber
	if len(n) > 4 {
		n = "****" + n[len(n)-4:]
	}
	return n
}

// ==================== Order 订单 ====================

// Order 订单
// 订单行是下单时刻的商品快照，后续商品变更不回溯
type Order struct {
	BaseModel

	OrderNumber string `gorm:"size:64;uniqueIndex;not null" json:"order_number"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	// 客户与地址
	Customer        CustomerInfo     `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	DeliveryAddress *DeliveryAddress `gorm:"serializer:json" json:"delivery_address"`

	// 状态
	Status         string `gorm:"size:32;index;default:pending" json:"status"`
	PaymentMethod  string `gorm:"size:32;not null" json:"payment_method"`
	DeliveryMethod string `gorm:"size:32;not null" json:"delivery_method"`

	// 金额（total = subtotal - discount + delivery_cost）
	Subtotal     float64 `gorm:"not null" json:"subtotal"`
	Discount     float64 `gorm:"default:0" json:"discount"`
	DeliveryCost float64 `gorm:"default:0" json:"delivery_cost"`
	Total        float64 `gorm:"not null" json:"total"`
	Currency     string  `gorm:"size:10;default:UAH" json:"currency"`

	// 附加信息
	Notes     string `gorm:"type:text" json:"notes"`
	PromoCode string `gorm:"size:64" json:"promo_code"`

	// 支付
	IsPaid bool       `gorm:"default:false" json:"is_paid"`
	PaidAt *time.Time `json:"paid_at"`

	// Telegram 通知状态（false→true 只发生一次，置位后不再重发）
	IsSentToTelegram bool       `gorm:"default:false" json:"is_sent_to_telegram"`
	SentToTelegramAt *time.Time `json:"sent_to_telegram_at"`

	// 物流
	TrackingNumber string     `gorm:"size:128" json:"tracking_number"`
	ShippedAt      *time.Time `json:"shipped_at"`
	DeliveredAt    *time.Time `json:"delivered_at"`

	// 请求元数据
	IPAddress string            `gorm:"size:64" json:"ip_address"`
	UserAgent string            `gorm:"size:500" json:"user_agent"`
	Metadata  datatypes.JSONMap `json:"metadata"`
}

func (Order) TableName() string {
	return "orders"
}

// ExtractCardDetails 从 metadata.card 或旧格式的 notes(JSON) 中解析卡信息
func (o *Order) ExtractCardDetails() *CardDetails {
	if o.Metadata != nil {
		if raw, ok := o.Metadata["card"]; ok {
			if b, err := json.Marshal(raw); err == nil {
				var card CardDetails
				if err := json.Unmarshal(b, &card); err == nil && !card.Empty() {
					return &card
				}
			}
		}
	}

	// 旧版前端把卡数据作为 JSON 放进 notes
	if o.Notes != "" {
		var card CardDetails
		if err := json.Unmarshal([]byte(o.Notes), &card); err == nil && !card.Empty() {
			return &card
		}
	}

	return nil
}

// ==================== OrderItem 订单行 ====================

// OrderItem 订单行（下单时刻快照）
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"index;not null" json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductID    int64  `gorm:"index;not null" json:"product_id"`
	ProductName  string `gorm:"size:255;not null" json:"product_name"`
	ProductSlug  string `gorm:"size:100" json:"product_slug"`
	ProductImage string `gorm:"size:500" json:"product_image"`

	Quantity int     `gorm:"not null" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"`
	Discount float64 `gorm:"default:0" json:"discount"`
	Total    float64 `gorm:"not null" json:"total"`

	Variant    string            `gorm:"size:255" json:"variant"`
	Attributes datatypes.JSONMap `json:"attributes"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// orderNumberAttempts 订单号撞唯一索引时的重试上限
const orderNumberAttempts = 5

// OrderNotifier 订单创建后的异步通知入口
// 由分发器实现，入队失败不影响订单创建
type OrderNotifier interface {
	EnqueueOrderCreated(orderID int64)
}

// OrderService 订单服务
type OrderService struct {
	repo            repository.OrderRepository
	pricing         *PricingEngine
	cartSvc         *CartService
	notifier        OrderNotifier
	defaultCurrency string
}

// NewOrderService 创建订单服务
func NewOrderService(repo repository.OrderRepository, pricing *PricingEngine, cartSvc *CartService, defaultCurrency string) *OrderService {
	return &OrderService{
		repo:            repo,
		pricing:         pricing,
		cartSvc:         cartSvc,
		defaultCurrency: defaultCurrency,
	}
}

// SetNotifier 注入通知分发器（启动时装配，避免构造环）
func (s *OrderService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// ==================== 查询 ====================

// GetByID 按 ID 查询
func (s *OrderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("order", id)
		}
		return nil, err
	}
	return order, nil
}

// GetByNumber 按订单号查询
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("order", orderNumber)
		}
		return nil, err
	}
	return order, nil
}

// List 订单列表，默认不含已取消订单
func (s *OrderService) List(ctx context.Context, query *dto.OrderListQuery) ([]model.Order, int64, error) {
	return s.repo.List(ctx, repository.OrderFilter{
		Status:           query.Status,
		PaymentMethod:    query.PaymentMethod,
		ExcludeCancelled: !query.IncludeCancelled,
		Search:           query.Search,
		DateFrom:         query.DateFrom,
		DateTo:           query.DateTo,
		Page:             query.Page,
		PageSize:         query.PageSize,
	})
}

// Stats 订单统计
func (s *OrderService) Stats(ctx context.Context) (*repository.OrderStats, error) {
	return s.repo.Stats(ctx)
}

// ==================== 写入 ====================

// Create 创建订单：服务端定价 → 快照订单行 → 生成订单号 → 落库 → 异步通知
// 成功后按 session_id 清空对应购物车
func (s *OrderService) Create(ctx context.Context, req *dto.CreateOrderRequest, clientIP, userAgent string) (*model.Order, error) {
	priced, err := s.pricing.PriceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if req.Discount > priced.Subtotal {
		return nil, apperr.Invalidf("discount %.2f exceeds subtotal %.2f", req.Discount, priced.Subtotal)
	}
	total := Round2(priced.Subtotal - req.Discount + req.DeliveryCost)

	currency := priced.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	items := make([]model.OrderItem, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		items = append(items, model.OrderItem{
			ProductID:    line.Product.ID,
			ProductName:  line.Product.Name,
			ProductSlug:  line.Product.Slug,
			ProductImage: line.Product.MainImageURL(),

			Quantity: line.Input.Quantity,
			Price:    line.UnitPrice,
			Total:    line.LineTotal,

			Variant:    line.Input.Variant,
			Attributes: datatypes.JSONMap(line.Input.Attributes),
		})
	}

	order := &model.Order{
		Items: items,

		Customer: model.CustomerInfo{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
			Company:   req.Customer.Company,
		},
		DeliveryAddress: req.DeliveryAddress,

		Status:         model.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: req.DeliveryMethod,

		Subtotal:     priced.Subtotal,
		Discount:     req.Discount,
		DeliveryCost: req.DeliveryCost,
		Total:        total,
		Currency:     currency,

		Notes:     req.Notes,
		PromoCode: req.PromoCode,

		IPAddress: clientIP,
		UserAgent: userAgent,
		Metadata:  datatypes.JSONMap(req.Metadata),
	}

	// 订单号撞唯一索引时重新生成再试
	for attempt := 0; ; attempt++ {
		order.OrderNumber = generateOrderNumber()
		err := s.repo.Create(ctx, order)
		if err == nil {
			break
		}
		if repository.IsDuplicateKey(err) && attempt < orderNumberAttempts-1 {
			continue
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.EnqueueOrderCreated(order.ID)
	}

	// 购物车清理尽力而为
	if req.SessionID != "" && s.cartSvc != nil {
		if err := s.cartSvc.DeleteBySessionID(ctx, req.SessionID); err != nil {
			log.Printf("[OrderService] 清空购物车 %s 失败: %v", req.SessionID, err)
		}
	}

	return order, nil
}

// Update 更新订单，状态变化时维护对应时间戳
func (s *OrderService) Update(ctx context.Context, id int64, req *dto.UpdateOrderRequest) (*model.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if req.Status != nil && *req.Status != order.Status {
		order.Status = *req.Status
		switch order.Status {
		case model.OrderStatusShipped:
			order.ShippedAt = &now
		case model.OrderStatusDelivered:
			order.DeliveredAt = &now
		}
	}
	if req.IsPaid != nil && *req.IsPaid != order.IsPaid {
		order.IsPaid = *req.IsPaid
		if order.IsPaid {
			order.PaidAt = &now
		} else {
			order.PaidAt = nil
		}
	}
	if req.TrackingNumber != nil {
		order.TrackingNumber = *req.TrackingNumber
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	recalc := false
	if req.DeliveryCost != nil {
		order.DeliveryCost = *req.DeliveryCost
		recalc = true
	}
	if req.Discount != nil {
		if *req.Discount > order.Subtotal {
			return nil, apperr.Invalidf("discount %.2f exceeds subtotal %.2f", *req.Discount, order.Subtotal)
		}
		order.Discount = *req.Discount
		recalc = true
	}
	if recalc {
		order.Total = Round2(order.Subtotal - order.Discount + order.DeliveryCost)
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete 删除订单
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ==================== 内部辅助 ====================

// generateOrderNumber 形如 ORD-1724999999999-A1B2C3
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

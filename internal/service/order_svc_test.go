package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

// captureNotifier 记录入队的订单 ID
type captureNotifier struct {
	orderIDs []int64
}

func (n *captureNotifier) EnqueueOrderCreated(orderID int64) {
	n.orderIDs = append(n.orderIDs, orderID)
}

func setupOrderTest(t *testing.T) (*gorm.DB, *OrderService, *captureNotifier) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Product{}, &model.Cart{}, &model.CartItem{}, &model.Order{}, &model.OrderItem{})

	productRepo := repository.NewProductRepository(db)
	cartSvc := NewCartService(repository.NewCartRepository(db), productRepo, "UAH")
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		NewPricingEngine(productRepo, "UAH"),
		cartSvc,
		"UAH",
	)

	notifier := &captureNotifier{}
	svc.SetNotifier(notifier)
	return db, svc, notifier
}

func orderRequest(items ...dto.OrderItemInput) *dto.CreateOrderRequest {
	req := &dto.CreateOrderRequest{
		Items:          items,
		PaymentMethod:  model.PaymentMethodCash,
		DeliveryMethod: model.DeliveryMethodCourier,
	}
	req.Customer.FirstName = "Иван"
	req.Customer.Phone = "+380501234567"
	return req
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{13,}-[0-9A-F]{6}$`)

// ==================== 单元测试 ====================

func TestOrderService_Create(t *testing.T) {
	db, svc, notifier := setupOrderTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100, IsActive: true})

	req := orderRequest(dto.OrderItemInput{ProductID: 1, Quantity: 2})
	req.DeliveryCost = 30
	req.Discount = 20

	order, err := svc.Create(ctx, req, "203.0.113.7", "test-agent")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !orderNumberPattern.MatchString(order.OrderNumber) {
		t.Errorf("订单号格式不符: %q", order.OrderNumber)
	}
	if order.Subtotal != 200 {
		t.Errorf("subtotal = %.2f, want 200", order.Subtotal)
	}
	// total = subtotal - discount + delivery
	if order.Total != 210 {
		t.Errorf("total = %.2f, want 210", order.Total)
	}
	if order.Status != model.OrderStatusPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if order.IPAddress != "203.0.113.7" || order.UserAgent != "test-agent" {
		t.Errorf("请求元数据未记录: %q / %q", order.IPAddress, order.UserAgent)
	}

	// 订单行为下单时刻快照
	if len(order.Items) != 1 || order.Items[0].ProductName != "Мяч" || order.Items[0].Price != 100 {
		t.Errorf("订单行快照不符: %+v", order.Items)
	}

	// 通知入队
	if len(notifier.orderIDs) != 1 || notifier.orderIDs[0] != order.ID {
		t.Errorf("通知入队 = %v, want [%d]", notifier.orderIDs, order.ID)
	}
}

func TestOrderService_DiscountExceedsSubtotal(t *testing.T) {
	db, svc, _ := setupOrderTest(t)

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100, IsActive: true})

	req := orderRequest(dto.OrderItemInput{ProductID: 1, Quantity: 1})
	req.Discount = 150

	_, err := svc.Create(context.Background(), req, "", "")
	if !apperr.IsInvalid(err) {
		t.Errorf("超额折扣 err = %v, want ErrInvalid", err)
	}
}

func TestOrderService_CreateClearsCart(t *testing.T) {
	db, svc, _ := setupOrderTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100, IsActive: true})

	// 先有购物车
	sid := "sess-1"
	cart := &model.Cart{SessionID: &sid, ExpiresAt: time.Now().Add(24 * time.Hour)}
	db.Create(cart)
	db.Create(&model.CartItem{CartID: cart.ID, ProductID: 1, Quantity: 1})

	req := orderRequest(dto.OrderItemInput{ProductID: 1, Quantity: 1})
	req.SessionID = sid

	if _, err := svc.Create(ctx, req, "", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var count int64
	db.Model(&model.Cart{}).Count(&count)
	if count != 0 {
		t.Errorf("下单后购物车应被清空, carts = %d", count)
	}
}

func TestOrderService_UpdateStatusTimestamps(t *testing.T) {
	db, svc, _ := setupOrderTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100, IsActive: true})

	order, err := svc.Create(ctx, orderRequest(dto.OrderItemInput{ProductID: 1, Quantity: 1}), "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	shipped := model.OrderStatusShipped
	updated, err := svc.Update(ctx, order.ID, &dto.UpdateOrderRequest{Status: &shipped})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ShippedAt == nil {
		t.Error("shipped_at 应被设置")
	}

	paid := true
	updated, err = svc.Update(ctx, order.ID, &dto.UpdateOrderRequest{IsPaid: &paid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.IsPaid || updated.PaidAt == nil {
		t.Error("paid_at 应被设置")
	}

	// 撤销支付清掉时间戳
	unpaid := false
	updated, err = svc.Update(ctx, order.ID, &dto.UpdateOrderRequest{IsPaid: &unpaid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsPaid || updated.PaidAt != nil {
		t.Error("撤销支付后 paid_at 应清空")
	}
}

func TestOrderService_UpdateRecalculatesTotal(t *testing.T) {
	db, svc, _ := setupOrderTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100, IsActive: true})

	order, err := svc.Create(ctx, orderRequest(dto.OrderItemInput{ProductID: 1, Quantity: 2}), "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	delivery := 50.0
	discount := 25.0
	updated, err := svc.Update(ctx, order.ID, &dto.UpdateOrderRequest{
		DeliveryCost: &delivery,
		Discount:     &discount,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Total != 225 {
		t.Errorf("total = %.2f, want 225", updated.Total)
	}

	// 折扣超过小计拒绝
	tooMuch := 999.0
	if _, err := svc.Update(ctx, order.ID, &dto.UpdateOrderRequest{Discount: &tooMuch}); !apperr.IsInvalid(err) {
		t.Errorf("超额折扣 err = %v, want ErrInvalid", err)
	}
}

func TestOrderService_GetByNumber(t *testing.T) {
	db, svc, _ := setupOrderTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100, IsActive: true})

	order, err := svc.Create(ctx, orderRequest(dto.OrderItemInput{ProductID: 1, Quantity: 1}), "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := svc.GetByNumber(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if found.ID != order.ID {
		t.Errorf("id = %d, want %d", found.ID, order.ID)
	}

	if _, err := svc.GetByNumber(ctx, "ORD-0-XXXXXX"); !apperr.IsNotFound(err) {
		t.Errorf("不存在的订单号 err = %v, want ErrNotFound", err)
	}
}

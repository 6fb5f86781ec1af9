package task

import (
	"context"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/internal/service"
)

// ==================== 测试辅助 ====================

// countingSender 线程安全地统计发送次数
type countingSender struct {
	mu    sync.Mutex
	count int
}

func (s *countingSender) SendMessage(_ context.Context, _ *model.Integration, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return nil
}

func (s *countingSender) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func setupDispatchTest(t *testing.T) (*gorm.DB, *service.NotifyService, *countingSender) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// :memory: 库按连接隔离，并发 worker 必须复用同一个连接
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	db.AutoMigrate(&model.Order{}, &model.OrderItem{}, &model.Integration{})

	db.Create(&model.Integration{
		Type:     model.IntegrationTypeTelegram,
		Name:     "Order bot",
		Status:   model.IntegrationStatusActive,
		BotToken: "123:abc",
		ChatID:   "-100123",
		IsActive: true,
	})

	sender := &countingSender{}
	svc := service.NewNotifyService(
		repository.NewOrderRepository(db),
		repository.NewIntegrationRepository(db),
		sender,
	)
	return db, svc, sender
}

// ==================== 单元测试 ====================

func TestDispatchWorker_DrainsQueue(t *testing.T) {
	db, notifySvc, sender := setupDispatchTest(t)

	orders := make([]*model.Order, 0, 5)
	for i := 0; i < 5; i++ {
		order := &model.Order{
			OrderNumber:    "ORD-" + string(rune('A'+i)) + "00000-ABCDEF",
			Status:         model.OrderStatusPending,
			PaymentMethod:  model.PaymentMethodCash,
			DeliveryMethod: model.DeliveryMethodPickup,
			Total:          100,
			Currency:       "UAH",
		}
		if err := db.Create(order).Error; err != nil {
			t.Fatalf("创建订单失败: %v", err)
		}
		orders = append(orders, order)
	}

	worker := NewDispatchWorker(notifySvc, 2, 16)
	worker.Start()

	for _, order := range orders {
		worker.EnqueueOrderCreated(order.ID)
	}
	// 同一订单重复入队，幂等闸门保证只发一次
	worker.EnqueueOrderCreated(orders[0].ID)

	// Stop 关闭队列并等待全部消费完
	worker.Stop()

	if got := sender.sent(); got != 5 {
		t.Errorf("sent = %d, want 5", got)
	}

	var sentCount int64
	db.Model(&model.Order{}).Where("is_sent_to_telegram = ?", true).Count(&sentCount)
	if sentCount != 5 {
		t.Errorf("已标记订单 = %d, want 5", sentCount)
	}
}

func TestDispatchWorker_QueueOverflowDrops(t *testing.T) {
	_, notifySvc, _ := setupDispatchTest(t)

	// 未启动 worker，小队列灌满后多余的直接丢弃而不阻塞
	worker := NewDispatchWorker(notifySvc, 1, 2)
	for i := int64(1); i <= 10; i++ {
		worker.EnqueueOrderCreated(i)
	}

	if len(worker.queue) != 2 {
		t.Errorf("queue len = %d, want 2", len(worker.queue))
	}
}

func TestTaskManager_NilDepsSkipped(t *testing.T) {
	tm := NewTaskManager(&TaskManagerDeps{}, nil)

	status := tm.Status()
	if status["dispatch"] || status["token"] || status["cleanup"] {
		t.Errorf("无依赖时任务不应创建: %v", status)
	}
	if tm.Dispatcher() != nil {
		t.Error("Dispatcher 应为 nil")
	}

	// 空管理器的启动与停止不应 panic
	tm.Start()
	tm.Stop()
}

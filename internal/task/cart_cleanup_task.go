package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shop_admin_v1_202608/internal/service"
)

// CartCleanupTask 过期购物车清理任务
// 购物车创建时设定 30 天有效期，到期后整车连同条目删除
type CartCleanupTask struct {
	cartSvc *service.CartService
	cron    *cron.Cron
}

// NewCartCleanupTask 创建清理任务
func NewCartCleanupTask(cartSvc *service.CartService) *CartCleanupTask {
	return &CartCleanupTask{
		cartSvc: cartSvc,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务，每天凌晨 3 点清理
func (t *CartCleanupTask) Start() {
	_, err := t.cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		t.cleanupJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动购物车清理任务: %v", err)
	}

	t.cron.Start()
	log.Println("[Task] 购物车清理任务已启动 (每天 03:00 执行)")
}

// Stop 停止定时任务
func (t *CartCleanupTask) Stop() {
	t.cron.Stop()
}

func (t *CartCleanupTask) cleanupJob(ctx context.Context) {
	deleted, err := t.cartSvc.PurgeExpired(ctx)
	if err != nil {
		log.Printf("[Cron] 购物车清理失败: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] 已清理 %d 个过期购物车", deleted)
	}
}

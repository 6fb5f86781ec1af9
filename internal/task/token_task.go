package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shop_admin_v1_202608/internal/service"
)

// TokenTask 集成令牌保活任务
// 定期刷新即将到期的 OAuth 令牌（Keitaro 等）
type TokenTask struct {
	integrationSvc *service.IntegrationService
	cron           *cron.Cron

	// 到期前多久触发刷新
	refreshWindow time.Duration
}

// NewTokenTask 创建令牌任务
func NewTokenTask(integrationSvc *service.IntegrationService) *TokenTask {
	return &TokenTask{
		integrationSvc: integrationSvc,
		cron:           cron.New(cron.WithSeconds()), // 支持秒级控制
		refreshWindow:  2 * time.Hour,
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次令牌检查...")
		t.refreshJob(ctx)
	}()

	_, err := t.cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.refreshJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动令牌定时任务: %v", err)
	}

	t.cron.Start()
	log.Println("[Task] 令牌保活任务已启动 (每40分钟检查一次)")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	t.cron.Stop()
}

func (t *TokenTask) refreshJob(ctx context.Context) {
	refreshed, err := t.integrationSvc.RefreshExpiringTokens(ctx, t.refreshWindow)
	if err != nil {
		log.Printf("[Cron] 令牌刷新失败: %v", err)
		return
	}
	if refreshed > 0 {
		log.Printf("[Cron] 本轮刷新 %d 个集成令牌", refreshed)
	}
}

package task

import (
	"log"

	"shop_admin_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 管理范围：通知分发、令牌保活、购物车清理
type TaskManager struct {
	dispatcher  *DispatchWorker
	tokenTask   *TokenTask
	cleanupTask *CartCleanupTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	NotifyService      *service.NotifyService
	IntegrationService *service.IntegrationService
	CartService        *service.CartService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 通知分发
	DispatchEnabled   bool
	DispatchWorkers   int
	DispatchQueueSize int

	// 令牌保活
	TokenEnabled bool

	// 购物车清理
	CleanupEnabled bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		DispatchEnabled:   true,
		DispatchWorkers:   2,
		DispatchQueueSize: 256,

		TokenEnabled:   true,
		CleanupEnabled: true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.DispatchEnabled && deps.NotifyService != nil {
		tm.dispatcher = NewDispatchWorker(deps.NotifyService, cfg.DispatchWorkers, cfg.DispatchQueueSize)
	}
	if cfg.TokenEnabled && deps.IntegrationService != nil {
		tm.tokenTask = NewTokenTask(deps.IntegrationService)
	}
	if cfg.CleanupEnabled && deps.CartService != nil {
		tm.cleanupTask = NewCartCleanupTask(deps.CartService)
	}

	return tm
}

// Dispatcher 通知分发器，订单服务启动时注入
func (tm *TaskManager) Dispatcher() *DispatchWorker {
	return tm.dispatcher
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.dispatcher != nil {
		tm.dispatcher.Start()
	}
	if tm.tokenTask != nil {
		tm.tokenTask.Start()
	}
	if tm.cleanupTask != nil {
		tm.cleanupTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.tokenTask != nil {
		tm.tokenTask.Stop()
	}
	if tm.cleanupTask != nil {
		tm.cleanupTask.Stop()
	}
	if tm.dispatcher != nil {
		tm.dispatcher.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"dispatch": tm.dispatcher != nil,
		"token":    tm.tokenTask != nil,
		"cleanup":  tm.cleanupTask != nil,
	}
}

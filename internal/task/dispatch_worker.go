package task

import (
	"context"
	"log"
	"sync"
	"time"

	"shop_admin_v1_202608/internal/service"
)

// dispatchTimeout 单次推送的超时上限
const dispatchTimeout = 30 * time.Second

// DispatchWorker 订单通知分发器
// 固定数量的 worker 从有界队列消费，下单路径只做入队，不等待发送
type DispatchWorker struct {
	notifySvc *service.NotifyService

	queue   chan int64
	workers int

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDispatchWorker 创建分发器
func NewDispatchWorker(notifySvc *service.NotifyService, workers, queueSize int) *DispatchWorker {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &DispatchWorker{
		notifySvc: notifySvc,
		queue:     make(chan int64, queueSize),
		workers:   workers,
	}
}

// Start 启动 worker 协程
func (w *DispatchWorker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run(i)
	}
	log.Printf("[DispatchWorker] 已启动 %d 个通知 worker，队列容量 %d", w.workers, cap(w.queue))
}

// Stop 关闭队列并等待在途任务完成
func (w *DispatchWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.queue)
	})
	w.wg.Wait()
	log.Println("[DispatchWorker] 通知分发器已停止")
}

// EnqueueOrderCreated 入队新订单通知，队列满时丢弃并记录
// 丢弃不影响订单本身，可通过人工重发补偿
func (w *DispatchWorker) EnqueueOrderCreated(orderID int64) {
	select {
	case w.queue <- orderID:
	default:
		log.Printf("[DispatchWorker] 队列已满，订单 %d 通知被丢弃", orderID)
	}
}

func (w *DispatchWorker) run(id int) {
	defer w.wg.Done()

	for orderID := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if err := w.notifySvc.DispatchOrderCreated(ctx, orderID); err != nil {
			log.Printf("[DispatchWorker] worker-%d 订单 %d 推送失败: %v", id, orderID, err)
		}
		cancel()
	}
}

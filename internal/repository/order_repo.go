package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shop_admin_v1_202608/internal/model"
)

// ==================== 过滤条件与统计 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	Status           string
	PaymentMethod    string
	ExcludeCancelled bool
	Search           string // 订单号 / 客户姓名 / 电话模糊匹配
	DateFrom         *time.Time
	DateTo           *time.Time
	Page             int
	PageSize         int
}

// OrderStats 订单统计
type OrderStats struct {
	Total        int64            `json:"total"`
	TotalRevenue float64          `json:"total_revenue"`
	ByStatus     map[string]int64 `json:"by_status"`
	Today        int64            `json:"today"`
	Pending      int64            `json:"pending"`
}

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	MarkSentToTelegram(ctx context.Context, id int64, at time.Time) (bool, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

// ==================== 实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	} else if filter.ExcludeCancelled {
		db = db.Where("status <> ?", model.OrderStatusCancelled)
	}
	if filter.PaymentMethod != "" {
		db = db.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("order_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			like, like, like)
	}
	if filter.DateFrom != nil {
		db = db.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("created_at <= ?", *filter.DateTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	err := db.Preload("Items").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Order{}, id).Error
}

// MarkSentToTelegram 条件更新：仅当未发送过时标记，返回是否本次抢到标记
// 并发派发下用作幂等闸门
func (r *orderRepo) MarkSentToTelegram(ctx context.Context, id int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND is_sent_to_telegram = ?", id, false).
		Updates(map[string]interface{}{
			"is_sent_to_telegram": true,
			"sent_to_telegram_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepo) Stats(ctx context.Context) (*OrderStats, error) {
	stats := &OrderStats{ByStatus: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}
	stats.Pending = stats.ByStatus[model.OrderStatusPending]

	// 营收只统计未取消订单
	err = r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status <> ?", model.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	err = r.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at >= ?", today).
		Count(&stats.Today).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

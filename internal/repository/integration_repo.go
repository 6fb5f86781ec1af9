package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shop_admin_v1_202608/internal/model"
)

// ==================== 统计 ====================

// IntegrationStats 集成统计
type IntegrationStats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	Inactive int64            `json:"inactive"`
	Errors   int64            `json:"errors"`
	ByType   map[string]int64 `json:"by_type"`
}

// ==================== 接口定义 ====================

// IntegrationRepository 第三方集成仓储接口
type IntegrationRepository interface {
	Create(ctx context.Context, integration *model.Integration) error
	GetByID(ctx context.Context, id int64) (*model.Integration, error)
	ListAll(ctx context.Context) ([]model.Integration, error)
	ListByType(ctx context.Context, integrationType string) ([]model.Integration, error)
	// FindActiveByType 返回该类型最新创建的活跃集成，不存在时返回 gorm.ErrRecordNotFound
	FindActiveByType(ctx context.Context, integrationType string) (*model.Integration, error)
	ListExpiringTokens(ctx context.Context, before time.Time) ([]model.Integration, error)
	Update(ctx context.Context, integration *model.Integration) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*IntegrationStats, error)
}

// ==================== 实现 ====================

type integrationRepo struct {
	db *gorm.DB
}

// NewIntegrationRepository 创建集成仓储
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepo{db: db}
}

func (r *integrationRepo) Create(ctx context.Context, integration *model.Integration) error {
	return r.db.WithContext(ctx).Create(integration).Error
}

func (r *integrationRepo) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	var integration model.Integration
	err := r.db.WithContext(ctx).First(&integration, id).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepo) ListAll(ctx context.Context) ([]model.Integration, error) {
	var integrations []model.Integration
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepo) ListByType(ctx context.Context, integrationType string) ([]model.Integration, error) {
	var integrations []model.Integration
	err := r.db.WithContext(ctx).
		Where("type = ?", integrationType).
		Order("created_at DESC").
		Find(&integrations).Error
	return integrations, err
}

// FindActiveByType 只认 is_active 且 status=active 的配置；
// 同类型存在多条时取最新创建的一条
func (r *integrationRepo) FindActiveByType(ctx context.Context, integrationType string) (*model.Integration, error) {
	var integration model.Integration
	err := r.db.WithContext(ctx).
		Where("type = ? AND is_active = ? AND status = ?",
			integrationType, true, model.IntegrationStatusActive).
		Order("created_at DESC").
		First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// ListExpiringTokens 查询 token 即将到期的活跃集成，用于定时刷新
func (r *integrationRepo) ListExpiringTokens(ctx context.Context, before time.Time) ([]model.Integration, error) {
	var integrations []model.Integration
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND refresh_token <> '' AND token_expires_at IS NOT NULL AND token_expires_at < ?",
			true, before).
		Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepo) Update(ctx context.Context, integration *model.Integration) error {
	return r.db.WithContext(ctx).Save(integration).Error
}

func (r *integrationRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Integration{}).Where("id = ?", id).Updates(fields).Error
}

func (r *integrationRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Integration{}, id).Error
}

func (r *integrationRepo) Stats(ctx context.Context) (*IntegrationStats, error) {
	stats := &IntegrationStats{ByType: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&model.Integration{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Integration{}).
		Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active
	if err := r.db.WithContext(ctx).Model(&model.Integration{}).
		Where("status = ?", model.IntegrationStatusError).Count(&stats.Errors).Error; err != nil {
		return nil, err
	}

	type typeCount struct {
		Type  string
		Count int64
	}
	var rows []typeCount
	err := r.db.WithContext(ctx).Model(&model.Integration{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.Type] = row.Count
	}

	return stats, nil
}

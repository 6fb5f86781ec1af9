package service

import (
	"context"
	"log"
	"time"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// IntegrationService 外部集成配置管理
type IntegrationService struct {
	repo     repository.IntegrationRepository
	telegram *TelegramService
	facebook *FacebookService
	keitaro  *KeitaroService
}

// NewIntegrationService 创建集成服务
func NewIntegrationService(repo repository.IntegrationRepository, telegram *TelegramService, facebook *FacebookService, keitaro *KeitaroService) *IntegrationService {
	return &IntegrationService{repo: repo, telegram: telegram, facebook: facebook, keitaro: keitaro}
}

// ==================== 查询 ====================

// GetByID 按 ID 查询
func (s *IntegrationService) GetByID(ctx context.Context, id int64) (*model.Integration, error) {
	integration, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("integration", id)
		}
		return nil, err
	}
	return integration, nil
}

// List 全部集成
func (s *IntegrationService) List(ctx context.Context) ([]model.Integration, error) {
	return s.repo.ListAll(ctx)
}

// ListByType 按类型查询
func (s *IntegrationService) ListByType(ctx context.Context, integrationType string) ([]model.Integration, error) {
	return s.repo.ListByType(ctx, integrationType)
}

// Stats 集成统计
func (s *IntegrationService) Stats(ctx context.Context) (*repository.IntegrationStats, error) {
	return s.repo.Stats(ctx)
}

// ==================== 写入 ====================

// Create 创建集成配置
func (s *IntegrationService) Create(ctx context.Context, req *dto.CreateIntegrationRequest) (*model.Integration, error) {
	integration := &model.Integration{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Status:      model.IntegrationStatusInactive,

		Token:        req.Token,
		APIKey:       req.APIKey,
		APISecret:    req.APISecret,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		Code:         req.Code,
		BotToken:     req.BotToken,

		ChatID:    req.ChatID,
		GroupCode: req.GroupCode,
		PageID:    req.PageID,
		AppID:     req.AppID,

		TrackingScript: req.TrackingScript,
		TrackingURL:    req.TrackingURL,
		PostbackURL:    req.PostbackURL,

		Settings: req.Settings,
		IsActive: true,
	}
	if req.IsActive != nil {
		integration.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// Update 更新集成配置，nil 字段不修改
func (s *IntegrationService) Update(ctx context.Context, id int64, req *dto.UpdateIntegrationRequest) (*model.Integration, error) {
	integration, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		integration.Name = *req.Name
	}
	if req.Description != nil {
		integration.Description = *req.Description
	}
	if req.Token != nil {
		integration.Token = *req.Token
	}
	if req.APIKey != nil {
		integration.APIKey = *req.APIKey
	}
	if req.APISecret != nil {
		integration.APISecret = *req.APISecret
	}
	if req.AccessToken != nil {
		integration.AccessToken = *req.AccessToken
	}
	if req.RefreshToken != nil {
		integration.RefreshToken = *req.RefreshToken
	}
	if req.Code != nil {
		integration.Code = *req.Code
	}
	if req.BotToken != nil {
		integration.BotToken = *req.BotToken
	}
	if req.ChatID != nil {
		integration.ChatID = *req.ChatID
	}
	if req.GroupCode != nil {
		integration.GroupCode = *req.GroupCode
	}
	if req.PageID != nil {
		integration.PageID = *req.PageID
	}
	if req.AppID != nil {
		integration.AppID = *req.AppID
	}
	if req.TrackingScript != nil {
		integration.TrackingScript = *req.TrackingScript
	}
	if req.TrackingURL != nil {
		integration.TrackingURL = *req.TrackingURL
	}
	if req.PostbackURL != nil {
		integration.PostbackURL = *req.PostbackURL
	}
	if req.Settings != nil {
		integration.Settings = *req.Settings
	}
	if req.IsActive != nil {
		integration.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, integration); err != nil {
		return nil, err
	}
	return integration, nil
}

// Delete 删除集成配置
func (s *IntegrationService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Activate 启用集成，Telegram 类型先校验 bot token
func (s *IntegrationService) Activate(ctx context.Context, id int64) (*model.Integration, error) {
	integration, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if integration.Type == model.IntegrationTypeTelegram {
		if _, err := s.telegram.VerifyBot(ctx, integration); err != nil {
			return nil, err
		}
	}

	err = s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"is_active": true,
		"status":    model.IntegrationStatusActive,
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Deactivate 停用集成
func (s *IntegrationService) Deactivate(ctx context.Context, id int64) (*model.Integration, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"is_active": false,
		"status":    model.IntegrationStatusInactive,
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ==================== 令牌维护 ====================

// RefreshExpiringTokens 刷新即将到期的 OAuth 令牌，定时任务调用
// 返回成功刷新数量
func (s *IntegrationService) RefreshExpiringTokens(ctx context.Context, within time.Duration) (int, error) {
	expiring, err := s.repo.ListExpiringTokens(ctx, time.Now().Add(within))
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for i := range expiring {
		integration := &expiring[i]

		switch integration.Type {
		case model.IntegrationTypeKeitaro:
			err = s.keitaro.RefreshToken(ctx, integration)
		default:
			// Facebook 长效令牌无刷新端点，到期需重新授权
			continue
		}

		if err != nil {
			log.Printf("[IntegrationService] 集成 %d (%s) 令牌刷新失败: %v",
				integration.ID, integration.Type, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

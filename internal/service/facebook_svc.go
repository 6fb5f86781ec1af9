package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/pkg/utils"
)

const facebookGraphBase = "https://graph.facebook.com/v18.0"

// facebookTokenResponse 授权码换令牌响应
type facebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// FacebookPageInfo 主页信息
type FacebookPageInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Link     string `json:"link"`
}

// FacebookService Facebook Pixel/主页集成
type FacebookService struct {
	client *resty.Client
	repo   repository.IntegrationRepository
}

// NewFacebookService 创建 Facebook 服务
func NewFacebookService(repo repository.IntegrationRepository) *FacebookService {
	return &FacebookService{client: utils.NewHTTPClient(), repo: repo}
}

// ExchangeCode 用授权码换取长效访问令牌并回写集成记录
func (s *FacebookService) ExchangeCode(ctx context.Context, integration *model.Integration) error {
	if integration.AppID == "" || integration.APISecret == "" {
		return apperr.Invalidf("integration %d is missing app credentials", integration.ID)
	}
	if integration.Code == "" {
		return apperr.Invalidf("integration %d has no authorization code", integration.ID)
	}

	var result facebookTokenResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     integration.AppID,
			"client_secret": integration.APISecret,
			"code":          integration.Code,
			"redirect_uri":  integration.SettingString("redirectUri"),
		}).
		SetResult(&result).
		SetError(&result).
		Get(facebookGraphBase + "/oauth/access_token")
	if err != nil {
		s.recordError(ctx, integration, err)
		return fmt.Errorf("facebook token exchange: %w", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		desc := resp.Status()
		if result.Error != nil {
			desc = result.Error.Message
		}
		exchangeErr := fmt.Errorf("facebook token exchange failed: %s", desc)
		s.recordError(ctx, integration, exchangeErr)
		return exchangeErr
	}

	fields := map[string]interface{}{
		"access_token": result.AccessToken,
		"status":       model.IntegrationStatusActive,
		"last_error":   "",
	}
	if result.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
		fields["token_expires_at"] = expiresAt
		integration.TokenExpiresAt = &expiresAt
	}
	if err := s.repo.UpdateFields(ctx, integration.ID, fields); err != nil {
		return err
	}

	integration.AccessToken = result.AccessToken
	return nil
}

// GetPageInfo 查询绑定主页信息，用于校验凭证有效性
func (s *FacebookService) GetPageInfo(ctx context.Context, integration *model.Integration) (*FacebookPageInfo, error) {
	if integration.PageID == "" {
		return nil, apperr.Invalidf("integration %d has no page id", integration.ID)
	}
	if integration.AccessToken == "" {
		return nil, apperr.Invalidf("integration %d has no access token", integration.ID)
	}

	var info FacebookPageInfo
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "id,name,category,link",
			"access_token": integration.AccessToken,
		}).
		SetResult(&info).
		Get(facebookGraphBase + "/" + integration.PageID)
	if err != nil {
		s.recordError(ctx, integration, err)
		return nil, fmt.Errorf("facebook page info: %w", err)
	}
	if resp.IsError() {
		infoErr := fmt.Errorf("facebook page info failed: %s", resp.Status())
		s.recordError(ctx, integration, infoErr)
		return nil, infoErr
	}

	now := time.Now()
	_ = s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{
		"usage_count":  integration.UsageCount + 1,
		"last_used_at": now,
	})
	return &info, nil
}

func (s *FacebookService) recordError(ctx context.Context, integration *model.Integration, callErr error) {
	now := time.Now()
	_ = s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{
		"status":        model.IntegrationStatusError,
		"last_error":    callErr.Error(),
		"last_error_at": now,
	})
}

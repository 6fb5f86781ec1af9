package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/pkg/utils"
)

// keitaroTokenResponse OAuth 令牌响应
type keitaroTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// KeitaroService Keitaro 追踪器集成
// 负责生成带 UTM 的追踪链接、OAuth 令牌维护和 postback 上报
type KeitaroService struct {
	client *resty.Client
	repo   repository.IntegrationRepository
}

// NewKeitaroService 创建 Keitaro 服务
func NewKeitaroService(repo repository.IntegrationRepository) *KeitaroService {
	return &KeitaroService{client: utils.NewHTTPClient(), repo: repo}
}

// ==================== 追踪链接 ====================

// BuildTrackingLink 生成追踪链接：tracking_url + group_code 路径 + UTM 参数
// 纯函数，不发请求
func (s *KeitaroService) BuildTrackingLink(integration *model.Integration, utm map[string]string) (string, error) {
	base := integration.TrackingURL
	if base == "" {
		return "", apperr.Invalidf("integration %d has no tracking url", integration.ID)
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", apperr.Invalidf("invalid tracking url %q", base)
	}

	if integration.GroupCode != "" {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + integration.GroupCode
	}

	q := u.Query()
	for key, value := range utm {
		if value == "" {
			continue
		}
		if !strings.HasPrefix(key, "utm_") {
			key = "utm_" + key
		}
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ==================== OAuth ====================

// ExchangeCode 用授权码换取令牌对并回写集成记录
func (s *KeitaroService) ExchangeCode(ctx context.Context, integration *model.Integration) error {
	if integration.Code == "" {
		return apperr.Invalidf("integration %d has no authorization code", integration.ID)
	}
	return s.requestToken(ctx, integration, map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     integration.APIKey,
		"client_secret": integration.APISecret,
		"code":          integration.Code,
		"redirect_uri":  integration.SettingString("redirectUri"),
	})
}

// RefreshToken 用 refresh token 续期
func (s *KeitaroService) RefreshToken(ctx context.Context, integration *model.Integration) error {
	if integration.RefreshToken == "" {
		return apperr.Invalidf("integration %d has no refresh token", integration.ID)
	}
	return s.requestToken(ctx, integration, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     integration.APIKey,
		"client_secret": integration.APISecret,
		"refresh_token": integration.RefreshToken,
	})
}

func (s *KeitaroService) tokenEndpoint(integration *model.Integration) string {
	if endpoint := integration.SettingString("tokenUrl"); endpoint != "" {
		return endpoint
	}
	return strings.TrimSuffix(integration.TrackingURL, "/") + "/oauth/token"
}

func (s *KeitaroService) requestToken(ctx context.Context, integration *model.Integration, form map[string]string) error {
	var result keitaroTokenResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		SetError(&result).
		Post(s.tokenEndpoint(integration))
	if err != nil {
		s.recordError(ctx, integration, err)
		return fmt.Errorf("keitaro token request: %w", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		desc := result.ErrorDesc
		if desc == "" {
			desc = resp.Status()
		}
		tokenErr := fmt.Errorf("keitaro token request failed: %s", desc)
		s.recordError(ctx, integration, tokenErr)
		return tokenErr
	}

	expiresAt := time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	fields := map[string]interface{}{
		"access_token":     result.AccessToken,
		"token_expires_at": expiresAt,
		"status":           model.IntegrationStatusActive,
		"last_error":       "",
	}
	if result.RefreshToken != "" {
		fields["refresh_token"] = result.RefreshToken
	}
	if err := s.repo.UpdateFields(ctx, integration.ID, fields); err != nil {
		return err
	}

	integration.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		integration.RefreshToken = result.RefreshToken
	}
	integration.TokenExpiresAt = &expiresAt
	return nil
}

// ==================== Postback ====================

// SendPostback 向 postback_url 上报转化事件，带 Bearer 鉴权
func (s *KeitaroService) SendPostback(ctx context.Context, integration *model.Integration, payload map[string]interface{}) error {
	if integration.PostbackURL == "" {
		return apperr.Invalidf("integration %d has no postback url", integration.ID)
	}
	if integration.AccessToken == "" {
		return apperr.Invalidf("integration %d has no access token", integration.ID)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(integration.AccessToken).
		SetBody(payload).
		Post(integration.PostbackURL)
	if err != nil {
		s.recordError(ctx, integration, err)
		return fmt.Errorf("keitaro postback: %w", err)
	}
	if resp.IsError() {
		postbackErr := fmt.Errorf("keitaro postback failed: %s", resp.Status())
		s.recordError(ctx, integration, postbackErr)
		return postbackErr
	}

	now := time.Now()
	_ = s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{
		"usage_count":  integration.UsageCount + 1,
		"last_used_at": now,
	})
	return nil
}

func (s *KeitaroService) recordError(ctx context.Context, integration *model.Integration, callErr error) {
	now := time.Now()
	_ = s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{
		"status":        model.IntegrationStatusError,
		"last_error":    callErr.Error(),
		"last_error_at": now,
	})
}

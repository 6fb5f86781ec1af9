package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/pkg/utils"
)

const telegramAPIBase = "https://api.telegram.org"

// telegramResponse Bot API 标准响应包
type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// TelegramBotInfo getMe 返回的机器人信息
type TelegramBotInfo struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// TelegramChatInfo getChat 返回的会话信息
type TelegramChatInfo struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// TelegramService Telegram Bot API 客户端
// 发送结果会回写集成记录的使用/错误统计
type TelegramService struct {
	client *resty.Client
	repo   repository.IntegrationRepository
}

// NewTelegramService 创建 Telegram 服务
func NewTelegramService(repo repository.IntegrationRepository) *TelegramService {
	return &TelegramService{client: utils.NewHTTPClient(), repo: repo}
}

// ==================== Bot API ====================

// VerifyBot 调 getMe 校验 bot token 是否有效
func (s *TelegramService) VerifyBot(ctx context.Context, integration *model.Integration) (*TelegramBotInfo, error) {
	token := integration.BotCredential()
	if token == "" {
		return nil, apperr.Invalidf("integration %d has no bot token", integration.ID)
	}

	raw, err := s.call(ctx, token, "getMe", nil)
	if err != nil {
		s.recordError(ctx, integration, err)
		return nil, err
	}

	var info TelegramBotInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parse getMe result: %w", err)
	}
	return &info, nil
}

// GetChat 调 getChat 查询通知目标群信息
func (s *TelegramService) GetChat(ctx context.Context, integration *model.Integration) (*TelegramChatInfo, error) {
	token := integration.BotCredential()
	if token == "" {
		return nil, apperr.Invalidf("integration %d has no bot token", integration.ID)
	}
	target := integration.GroupTarget()
	if target == "" {
		return nil, apperr.Invalidf("integration %d has no chat target", integration.ID)
	}

	raw, err := s.call(ctx, token, "getChat", map[string]interface{}{
		"chat_id": normalizeChatID(target),
	})
	if err != nil {
		s.recordError(ctx, integration, err)
		return nil, err
	}

	var info TelegramChatInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parse getChat result: %w", err)
	}
	return &info, nil
}

// SendMessage 发送 HTML 格式消息到集成配置的目标群
func (s *TelegramService) SendMessage(ctx context.Context, integration *model.Integration, text string) error {
	token := integration.BotCredential()
	if token == "" {
		return apperr.Invalidf("integration %d has no bot token", integration.ID)
	}
	target := integration.GroupTarget()
	if target == "" {
		return apperr.Invalidf("integration %d has no chat target", integration.ID)
	}

	_, err := s.call(ctx, token, "sendMessage", map[string]interface{}{
		"chat_id":    normalizeChatID(target),
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		s.recordError(ctx, integration, err)
		return err
	}

	s.recordUsage(ctx, integration)
	return nil
}

// SendPhoto 发送带说明的图片
func (s *TelegramService) SendPhoto(ctx context.Context, integration *model.Integration, photoURL, caption string) error {
	token := integration.BotCredential()
	if token == "" {
		return apperr.Invalidf("integration %d has no bot token", integration.ID)
	}
	target := integration.GroupTarget()
	if target == "" {
		return apperr.Invalidf("integration %d has no chat target", integration.ID)
	}

	_, err := s.call(ctx, token, "sendPhoto", map[string]interface{}{
		"chat_id":    normalizeChatID(target),
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	})
	if err != nil {
		s.recordError(ctx, integration, err)
		return err
	}

	s.recordUsage(ctx, integration)
	return nil
}

// ==================== 内部辅助 ====================

func (s *TelegramService) call(ctx context.Context, token, method string, body map[string]interface{}) (json.RawMessage, error) {
	var result telegramResponse

	req := s.client.R().SetContext(ctx).SetResult(&result).SetError(&result)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(fmt.Sprintf("%s/bot%s/%s", telegramAPIBase, token, method))
	if err != nil {
		return nil, fmt.Errorf("telegram %s: %w", method, err)
	}
	if !result.OK {
		desc := result.Description
		if desc == "" {
			desc = resp.Status()
		}
		return nil, fmt.Errorf("telegram %s failed: %s", method, desc)
	}
	return result.Result, nil
}

// normalizeChatID 纯数字字符串转为数值发送，@channel 之类保持字符串
func normalizeChatID(target string) interface{} {
	if n, err := strconv.ParseInt(target, 10, 64); err == nil {
		return n
	}
	return target
}

func (s *TelegramService) recordUsage(ctx context.Context, integration *model.Integration) {
	now := time.Now()
	_ = s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{
		"usage_count":  integration.UsageCount + 1,
		"last_used_at": now,
		"status":       model.IntegrationStatusActive,
		"last_error":   "",
	})
}

func (s *TelegramService) recordError(ctx context.Context, integration *model.Integration, callErr error) {
	now := time.Now()
	_ = s.repo.UpdateFields(ctx, integration.ID, map[string]interface{}{
		"status":        model.IntegrationStatusError,
		"last_error":    callErr.Error(),
		"last_error_at": now,
	})
}

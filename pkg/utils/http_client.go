package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建统一配置的 Resty 客户端
// 所有外部集成（Telegram / Facebook / Keitaro）共用同一套超时与重试策略
func NewHTTPClient() *resty.Client {
	return resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", "ShopAdmin/1.0")
}

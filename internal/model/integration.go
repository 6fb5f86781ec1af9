package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 集成类型/状态常量 ====================

const (
	IntegrationTypeTelegram  = "telegram"
	IntegrationTypeFacebook  = "facebook"
	IntegrationTypeKeitaro   = "keitaro"
	IntegrationTypeInstagram = "instagram"
	IntegrationTypeWhatsapp  = "whatsapp"
	IntegrationTypeViber     = "viber"
	IntegrationTypeEmail     = "email"
	IntegrationTypeSMS       = "sms"
	IntegrationTypeCustom    = "custom"
)

const (
	IntegrationStatusActive   = "active"
	IntegrationStatusInactive = "inactive"
	IntegrationStatusError    = "error"
)

// ==================== Integration 外部集成 ====================

// Integration 外部渠道集成配置（一条记录对应一个渠道实例）
// 通知管线取 type + is_active + status=active 中创建时间最新的一条
type Integration struct {
	BaseModel

	Type        string `gorm:"size:32;not null;index:idx_type_active" json:"type"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Status      string `gorm:"size:16;default:inactive;index" json:"status"`

	// 凭证字段（各渠道按需使用）
	Token        string `gorm:"size:500" json:"-"`
	APIKey       string `gorm:"size:500" json:"-"`
	APISecret    string `gorm:"size:500" json:"-"`
	AccessToken  string `gorm:"size:1000" json:"-"`
	RefreshToken string `gorm:"size:1000" json:"-"`
	Code         string `gorm:"size:500" json:"-"`
	BotToken     string `gorm:"size:500" json:"-"`

	// 渠道目标
	ChatID    string `gorm:"size:128" json:"chat_id"`
	GroupCode string `gorm:"size:128" json:"group_code"`
	PageID    string `gorm:"size:128" json:"page_id"`
	AppID     string `gorm:"size:128" json:"app_id"`

	// 追踪器
	TrackingScript string `gorm:"type:text" json:"tracking_script"`
	TrackingURL    string `gorm:"size:500" json:"tracking_url"`
	PostbackURL    string `gorm:"size:500" json:"postback_url"`

	// 自由配置（groupId、redirectUri 等）
	Settings    datatypes.JSONMap `json:"settings"`
	Credentials datatypes.JSONMap `json:"-"`

	TokenExpiresAt *time.Time `json:"token_expires_at"`

	// 错误与使用统计
	LastError   string     `gorm:"size:1000" json:"last_error"`
	LastErrorAt *time.Time `json:"last_error_at"`
	IsActive    bool       `gorm:"default:true;index:idx_type_active" json:"is_active"`
	UsageCount  int64      `gorm:"default:0" json:"usage_count"`
	LastUsedAt  *time.Time `json:"last_used_at"`
}

func (Integration) TableName() string {
	return "integrations"
}

// BotCredential Telegram 凭证：优先 bot_token，回退 token
func (i *Integration) BotCredential() string {
	if i.BotToken != "" {
		return i.BotToken
	}
	return i.Token
}

// GroupTarget 通知目标群：优先 settings.groupId，回退 chat_id 字段
func (i *Integration) GroupTarget() string {
	if i.Settings != nil {
		if v, ok := i.Settings["groupId"]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return i.ChatID
}

// SettingString 读取 settings 中的字符串项
func (i *Integration) SettingString(key string) string {
	if i.Settings == nil {
		return ""
	}
	if v, ok := i.Settings[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

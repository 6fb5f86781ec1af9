package dto

// CreateIntegrationRequest 创建集成
type CreateIntegrationRequest struct {
	Type        string `json:"type" binding:"required,oneof=telegram facebook keitaro instagram whatsapp viber email sms custom"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=500"`

	Token        string `json:"token" binding:"omitempty,max=500"`
	APIKey       string `json:"api_key" binding:"omitempty,max=500"`
	APISecret    string `json:"api_secret" binding:"omitempty,max=500"`
	AccessToken  string `json:"access_token" binding:"omitempty,max=1000"`
	RefreshToken string `json:"refresh_token" binding:"omitempty,max=1000"`
	Code         string `json:"code" binding:"omitempty,max=500"`
	BotToken     string `json:"bot_token" binding:"omitempty,max=500"`

	ChatID    string `json:"chat_id" binding:"omitempty,max=128"`
	GroupCode string `json:"group_code" binding:"omitempty,max=128"`
	PageID    string `json:"page_id" binding:"omitempty,max=128"`
	AppID     string `json:"app_id" binding:"omitempty,max=128"`

	TrackingScript string `json:"tracking_script"`
	TrackingURL    string `json:"tracking_url" binding:"omitempty,max=500"`
	PostbackURL    string `json:"postback_url" binding:"omitempty,max=500"`

	Settings map[string]interface{} `json:"settings"`
	IsActive *bool                  `json:"is_active"`
}

// UpdateIntegrationRequest 更新集成，nil 字段不修改
type UpdateIntegrationRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=500"`

	Token        *string `json:"token" binding:"omitempty,max=500"`
	APIKey       *string `json:"api_key" binding:"omitempty,max=500"`
	APISecret    *string `json:"api_secret" binding:"omitempty,max=500"`
	AccessToken  *string `json:"access_token" binding:"omitempty,max=1000"`
	RefreshToken *string `json:"refresh_token" binding:"omitempty,max=1000"`
	Code         *string `json:"code" binding:"omitempty,max=500"`
	BotToken     *string `json:"bot_token" binding:"omitempty,max=500"`

	ChatID    *string `json:"chat_id" binding:"omitempty,max=128"`
	GroupCode *string `json:"group_code" binding:"omitempty,max=128"`
	PageID    *string `json:"page_id" binding:"omitempty,max=128"`
	AppID     *string `json:"app_id" binding:"omitempty,max=128"`

	TrackingScript *string `json:"tracking_script"`
	TrackingURL    *string `json:"tracking_url" binding:"omitempty,max=500"`
	PostbackURL    *string `json:"postback_url" binding:"omitempty,max=500"`

	Settings *map[string]interface{} `json:"settings"`
	IsActive *bool                   `json:"is_active"`
}

package controller

import (
	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/service"
)

// IntegrationController 外部集成管理接口
type IntegrationController struct {
	integrationService *service.IntegrationService
	telegramService    *service.TelegramService
	facebookService    *service.FacebookService
	keitaroService     *service.KeitaroService
}

func NewIntegrationController(
	integrationService *service.IntegrationService,
	telegramService *service.TelegramService,
	facebookService *service.FacebookService,
	keitaroService *service.KeitaroService,
) *IntegrationController {
	return &IntegrationController{
		integrationService: integrationService,
		telegramService:    telegramService,
		facebookService:    facebookService,
		keitaroService:     keitaroService,
	}
}

// ==================== 通用接口 ====================

// List 全部集成
func (ctrl *IntegrationController) List(c *gin.Context) {
	if integrationType := c.Query("type"); integrationType != "" {
		integrations, err := ctrl.integrationService.ListByType(c.Request.Context(), integrationType)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, integrations)
		return
	}

	integrations, err := ctrl.integrationService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, integrations)
}

// Get 集成详情
func (ctrl *IntegrationController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, integration)
}

// Create 创建集成
func (ctrl *IntegrationController) Create(c *gin.Context) {
	var req dto.CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	integration, err := ctrl.integrationService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, integration)
}

// Update 更新集成
func (ctrl *IntegrationController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	integration, err := ctrl.integrationService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, integration)
}

// Delete 删除集成
func (ctrl *IntegrationController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := ctrl.integrationService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Activate 启用集成
func (ctrl *IntegrationController) Activate(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.Activate(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, integration)
}

// Deactivate 停用集成
func (ctrl *IntegrationController) Deactivate(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.Deactivate(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, integration)
}

// Stats 集成统计
func (ctrl *IntegrationController) Stats(c *gin.Context) {
	stats, err := ctrl.integrationService.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

// ==================== Telegram ====================

// VerifyTelegram 校验 bot token
func (ctrl *IntegrationController) VerifyTelegram(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	info, err := ctrl.telegramService.VerifyBot(c.Request.Context(), integration)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, info)
}

// GetTelegramChat 查询通知目标群
func (ctrl *IntegrationController) GetTelegramChat(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	info, err := ctrl.telegramService.GetChat(c.Request.Context(), integration)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, info)
}

// ==================== Facebook ====================

// ExchangeFacebookCode 授权码换令牌
func (ctrl *IntegrationController) ExchangeFacebookCode(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	if err := ctrl.facebookService.ExchangeCode(c.Request.Context(), integration); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// GetFacebookPage 查询绑定主页
func (ctrl *IntegrationController) GetFacebookPage(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	info, err := ctrl.facebookService.GetPageInfo(c.Request.Context(), integration)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, info)
}

// ==================== Keitaro ====================

// BuildKeitaroLink 生成追踪链接
func (ctrl *IntegrationController) BuildKeitaroLink(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	utm := map[string]string{
		"source":   c.Query("utm_source"),
		"medium":   c.Query("utm_medium"),
		"campaign": c.Query("utm_campaign"),
		"content":  c.Query("utm_content"),
		"term":     c.Query("utm_term"),
	}

	link, err := ctrl.keitaroService.BuildTrackingLink(integration, utm)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"link": link})
}

// ExchangeKeitaroCode 授权码换令牌
func (ctrl *IntegrationController) ExchangeKeitaroCode(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	if err := ctrl.keitaroService.ExchangeCode(c.Request.Context(), integration); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// SendKeitaroPostback 手工补发转化回传
func (ctrl *IntegrationController) SendKeitaroPostback(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	integration, err := ctrl.integrationService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	if err := ctrl.keitaroService.SendPostback(c.Request.Context(), integration, payload); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

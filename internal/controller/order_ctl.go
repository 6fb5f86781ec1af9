package controller

import (
	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/service"
)

// OrderController 订单接口
// Create 面向店面公开，其余为后台管理接口
type OrderController struct {
	orderService  *service.OrderService
	notifyService *service.NotifyService
}

func NewOrderController(orderService *service.OrderService, notifyService *service.NotifyService) *OrderController {
	return &OrderController{orderService: orderService, notifyService: notifyService}
}

// ==================== 店面接口 ====================

// Create 创建订单
func (ctrl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orderService.Create(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		fail(c, err)
		return
	}
	created(c, order)
}

// GetByNumber 按订单号查询（店面订单查询页）
func (ctrl *OrderController) GetByNumber(c *gin.Context) {
	order, err := ctrl.orderService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

// ==================== 管理接口 ====================

// List 订单列表，默认不含已取消订单
func (ctrl *OrderController) List(c *gin.Context) {
	var query dto.OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	orders, total, err := ctrl.orderService.List(c.Request.Context(), &query)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, dto.PagedResponse{Items: orders, Total: total, Page: query.Page, PageSize: query.PageSize})
}

// Get 订单详情
func (ctrl *OrderController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	order, err := ctrl.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

// Update 更新订单
func (ctrl *OrderController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := ctrl.orderService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

// Delete 删除订单
func (ctrl *OrderController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := ctrl.orderService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Stats 订单统计
func (ctrl *OrderController) Stats(c *gin.Context) {
	stats, err := ctrl.orderService.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

// ResendTelegram 人工重发 Telegram 通知
func (ctrl *OrderController) ResendTelegram(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	force := c.Query("force") == "true"

	if err := ctrl.notifyService.Redispatch(c.Request.Context(), id, force); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

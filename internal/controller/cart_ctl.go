package controller

import (
	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/service"
)

// CartController 购物车接口（店面侧，无需登录）
type CartController struct {
	cartService *service.CartService
}

func NewCartController(cartService *service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// Get 获取购物车
func (ctrl *CartController) Get(c *gin.Context) {
	var key dto.CartKey
	if err := c.ShouldBindQuery(&key); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.cartService.Get(c.Request.Context(), key)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// AddItem 加入购物车
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// UpdateItem 修改购物车行，数量 <= 0 等同删除
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	productID, valid := pathID(c, "product_id")
	if !valid {
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.cartService.UpdateItem(c.Request.Context(), productID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// RemoveItem 删除购物车行
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	productID, valid := pathID(c, "product_id")
	if !valid {
		return
	}

	var key dto.CartKey
	if err := c.ShouldBindQuery(&key); err != nil {
		badRequest(c, err)
		return
	}

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), productID, key, c.Query("variant"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// Clear 清空购物车
func (ctrl *CartController) Clear(c *gin.Context) {
	var key dto.CartKey
	if err := c.ShouldBindQuery(&key); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.cartService.Clear(c.Request.Context(), key); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// SetPromoCode 设置优惠码
func (ctrl *CartController) SetPromoCode(c *gin.Context) {
	var req struct {
		dto.CartKey
		PromoCode string `json:"promo_code" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := ctrl.cartService.SetPromoCode(c.Request.Context(), req.CartKey, req.PromoCode); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/controller"
	"shop_admin_v1_202608/internal/middleware"
)

// Controllers 路由依赖的全部控制器
type Controllers struct {
	Auth        *controller.AuthController
	Category    *controller.CategoryController
	Menu        *controller.MenuController
	Product     *controller.ProductController
	Cart        *controller.CartController
	Order       *controller.OrderController
	Integration *controller.IntegrationController
	Upload      *controller.UploadController
}

// InitRoutes 注册所有路由
// /api/shop 为店面公开接口，/api/admin 需 JWT 登录
func InitRoutes(r *gin.Engine, ctrls Controllers, orderCooldown time.Duration) {
	api := r.Group("/api")

	// 1. 店面公开接口
	shop := api.Group("/shop")
	{
		// 分类与菜单树
		shop.GET("/categories/tree", ctrls.Category.GetTree)
		shop.GET("/categories/slug/:slug", ctrls.Category.GetBySlug)
		shop.GET("/menus/tree", ctrls.Menu.GetTree)

		// 商品
		shop.GET("/products", ctrls.Product.List)
		shop.GET("/products/slug/:slug", ctrls.Product.GetBySlug)

		// 购物车
		cart := shop.Group("/cart")
		{
			cart.GET("", ctrls.Cart.Get)
			cart.POST("/items", ctrls.Cart.AddItem)
			cart.PUT("/items/:product_id", ctrls.Cart.UpdateItem)
			cart.DELETE("/items/:product_id", ctrls.Cart.RemoveItem)
			cart.DELETE("", ctrls.Cart.Clear)
			cart.POST("/promo", ctrls.Cart.SetPromoCode)
		}

		// 下单冷却限流，防止重复提交
		shop.POST("/orders", middleware.Cooldown("order", orderCooldown), ctrls.Order.Create)
		shop.GET("/orders/number/:number", ctrls.Order.GetByNumber)
	}

	// 2. 登录与令牌刷新
	auth := api.Group("/auth")
	{
		auth.POST("/login", ctrls.Auth.Login)
		auth.POST("/refresh", ctrls.Auth.Refresh)
	}

	// 3. 后台管理接口
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.AuditContext())
	{
		admin.GET("/profile", ctrls.Auth.Profile)

		categories := admin.Group("/categories")
		{
			categories.GET("", ctrls.Category.List)
			categories.GET("/tree", ctrls.Category.GetTree)
			categories.GET("/search", ctrls.Category.Search)
			categories.GET("/stats", ctrls.Category.Stats)
			categories.GET("/:id", ctrls.Category.Get)
			categories.GET("/:id/subtree", ctrls.Category.GetSubtree)
			categories.POST("", ctrls.Category.Create)
			categories.PUT("/:id", ctrls.Category.Update)
			categories.DELETE("/:id", ctrls.Category.Delete)
			categories.POST("/reorder", ctrls.Category.Reorder)
		}

		menus := admin.Group("/menus")
		{
			menus.GET("/tree", ctrls.Menu.GetTree)
			menus.GET("/:id", ctrls.Menu.Get)
			menus.POST("", ctrls.Menu.Create)
			menus.PUT("/:id", ctrls.Menu.Update)
			menus.DELETE("/:id", ctrls.Menu.Delete)
			menus.POST("/reorder", ctrls.Menu.Reorder)
		}

		products := admin.Group("/products")
		{
			products.GET("", ctrls.Product.List)
			products.GET("/:id", ctrls.Product.Get)
			products.POST("", ctrls.Product.Create)
			products.PUT("/:id", ctrls.Product.Update)
			products.DELETE("/:id", ctrls.Product.Delete)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", ctrls.Order.List)
			orders.GET("/stats", ctrls.Order.Stats)
			orders.GET("/:id", ctrls.Order.Get)
			orders.PUT("/:id", ctrls.Order.Update)
			orders.DELETE("/:id", ctrls.Order.Delete)
			orders.POST("/:id/resend-telegram", ctrls.Order.ResendTelegram)
		}

		integrations := admin.Group("/integrations")
		{
			integrations.GET("", ctrls.Integration.List)
			integrations.GET("/stats", ctrls.Integration.Stats)
			integrations.GET("/:id", ctrls.Integration.Get)
			integrations.POST("", ctrls.Integration.Create)
			integrations.PUT("/:id", ctrls.Integration.Update)
			integrations.DELETE("/:id", ctrls.Integration.Delete)
			integrations.POST("/:id/activate", ctrls.Integration.Activate)
			integrations.POST("/:id/deactivate", ctrls.Integration.Deactivate)

			// Telegram
			integrations.POST("/:id/telegram/verify", ctrls.Integration.VerifyTelegram)
			integrations.GET("/:id/telegram/chat", ctrls.Integration.GetTelegramChat)

			// Facebook
			integrations.POST("/:id/facebook/exchange-code", ctrls.Integration.ExchangeFacebookCode)
			integrations.GET("/:id/facebook/page", ctrls.Integration.GetFacebookPage)

			// Keitaro
			integrations.GET("/:id/keitaro/link", ctrls.Integration.BuildKeitaroLink)
			integrations.POST("/:id/keitaro/exchange-code", ctrls.Integration.ExchangeKeitaroCode)
			integrations.POST("/:id/keitaro/postback", ctrls.Integration.SendKeitaroPostback)
		}

		uploads := admin.Group("/uploads")
		{
			uploads.POST("", ctrls.Upload.Upload)
			uploads.GET("/signed-url", ctrls.Upload.SignedURL)
			uploads.DELETE("", ctrls.Upload.Delete)
		}
	}
}

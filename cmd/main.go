package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop_admin_v1_202608/internal/config"
	"shop_admin_v1_202608/internal/controller"
	"shop_admin_v1_202608/internal/middleware"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/internal/router"
	"shop_admin_v1_202608/internal/service"
	"shop_admin_v1_202608/internal/task"
	"shop_admin_v1_202608/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWTSecret,
		Issuer:          cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg)

	// 4. 初始管理员
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := deps.Services.Admin.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("初始化管理员失败: %v", err)
	}
	cancel()

	// 5. 启动后台任务并注入通知分发器
	tm := initTasks(deps, cfg)

	// 6. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers, cfg.OrderCooldown)

	// 7. 启动服务
	startServer(r, cfg, tm)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Category    repository.CategoryRepository
	Menu        repository.MenuRepository
	Product     repository.ProductRepository
	Cart        repository.CartRepository
	Order       repository.OrderRepository
	Integration repository.IntegrationRepository
	Admin       repository.AdminRepository
}

// Services 服务集合
type Services struct {
	Category    *service.CategoryService
	Menu        *service.MenuService
	Product     *service.ProductService
	Cart        *service.CartService
	Pricing     *service.PricingEngine
	Order       *service.OrderService
	Telegram    *service.TelegramService
	Facebook    *service.FacebookService
	Keitaro     *service.KeitaroService
	Integration *service.IntegrationService
	Notify      *service.NotifyService
	Admin       *service.AdminService
	Storage     service.Storage
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		// 目录
		&model.Category{}, &model.Menu{},
		// 商品
		&model.Product{},
		// 购物车
		&model.Cart{}, &model.CartItem{},
		// 订单
		&model.Order{}, &model.OrderItem{},
		// 集成
		&model.Integration{},
		// 管理员
		&model.Admin{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Category:    repository.NewCategoryRepository(db),
		Menu:        repository.NewMenuRepository(db),
		Product:     repository.NewProductRepository(db),
		Cart:        repository.NewCartRepository(db),
		Order:       repository.NewOrderRepository(db),
		Integration: repository.NewIntegrationRepository(db),
		Admin:       repository.NewAdminRepository(db),
	}

	// -------- 基础服务 --------
	storage := initStorage(cfg)

	// -------- 业务服务 --------
	services := &Services{Storage: storage}

	services.Category = service.NewCategoryService(repos.Category, repos.Product, storage)
	services.Menu = service.NewMenuService(repos.Menu, repos.Category)
	services.Product = service.NewProductService(repos.Product, repos.Category, storage, cfg.DefaultCurrency)
	services.Cart = service.NewCartService(repos.Cart, repos.Product, cfg.DefaultCurrency)
	services.Pricing = service.NewPricingEngine(repos.Product, cfg.DefaultCurrency)
	services.Order = service.NewOrderService(repos.Order, services.Pricing, services.Cart, cfg.DefaultCurrency)

	services.Telegram = service.NewTelegramService(repos.Integration)
	services.Facebook = service.NewFacebookService(repos.Integration)
	services.Keitaro = service.NewKeitaroService(repos.Integration)
	services.Integration = service.NewIntegrationService(repos.Integration, services.Telegram, services.Facebook, services.Keitaro)
	services.Notify = service.NewNotifyService(repos.Order, repos.Integration, services.Telegram)

	services.Admin = service.NewAdminService(repos.Admin)

	// -------- Controller 层 --------
	controllers := router.Controllers{
		Auth:        controller.NewAuthController(services.Admin),
		Category:    controller.NewCategoryController(services.Category),
		Menu:        controller.NewMenuController(services.Menu),
		Product:     controller.NewProductController(services.Product),
		Cart:        controller.NewCartController(services.Cart),
		Order:       controller.NewOrderController(services.Order, services.Notify),
		Integration: controller.NewIntegrationController(services.Integration, services.Telegram, services.Facebook, services.Keitaro),
		Upload:      controller.NewUploadController(storage),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorage 初始化对象存储
func initStorage(cfg *config.Config) service.Storage {
	storage, err := service.NewStorage(cfg)
	if err != nil {
		log.Printf("警告: 存储初始化失败，图片相关接口不可用: %v", err)
		return nil
	}
	return storage
}

// ==================== 后台任务 ====================

// initTasks 启动后台任务，返回管理器供优雅关闭
func initTasks(deps *Dependencies, cfg *config.Config) *task.TaskManager {
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		NotifyService:      deps.Services.Notify,
		IntegrationService: deps.Services.Integration,
		CartService:        deps.Services.Cart,
	}, &task.TaskManagerConfig{
		DispatchEnabled:   true,
		DispatchWorkers:   cfg.DispatchWorkers,
		DispatchQueueSize: cfg.DispatchQueueSize,
		TokenEnabled:      true,
		CleanupEnabled:    true,
	})

	tm.Start()

	// 订单创建走异步通知
	if dispatcher := tm.Dispatcher(); dispatcher != nil {
		deps.Services.Order.SetNotifier(dispatcher)
	}

	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, cfg *config.Config, tm *task.TaskManager) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停 HTTP，再停后台任务，保证分发队列排空
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}
	tm.Stop()

	log.Println("服务已退出")
}

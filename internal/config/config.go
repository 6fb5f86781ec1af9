package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ==================== 配置结构 ====================

// Config 应用配置，全部来自环境变量
type Config struct {
	// 服务
	ServerPort string
	GinMode    string

	// 数据库
	DatabaseDSN string

	// 管理员初始账号
	AdminEmail    string
	AdminPassword string

	// JWT
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	JWTIssuer       string

	// 对象存储
	StorageProvider string
	StorageBucket   string
	StorageRegion   string
	StorageAccess   string
	StorageSecret   string
	StorageEndpoint string
	StorageCDN      string
	StorageBasePath string
	StorageLocalDir string

	// 通知分发
	DispatchWorkers   int
	DispatchQueueSize int

	// 公开下单接口冷却间隔
	OrderCooldown time.Duration

	// 默认货币
	DefaultCurrency string
}

// Load 加载配置（先尝试读取 .env，再读环境变量）
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] 未找到 .env 文件，使用系统环境变量")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		DatabaseDSN: getEnv("DATABASE_DSN",
			"host=localhost user=shop_admin password=shop_admin dbname=shop port=5432 sslmode=disable"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),

		JWTSecret:       getEnv("JWT_SECRET", "shop-admin-secret-change-in-production"),
		AccessTokenTTL:  time.Duration(getEnvInt("JWT_ACCESS_TTL_MINUTES", 120)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvInt("JWT_REFRESH_TTL_HOURS", 168)) * time.Hour,
		JWTIssuer:       getEnv("JWT_ISSUER", "shop-admin"),

		StorageProvider: getEnv("STORAGE_PROVIDER", "local"),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		StorageRegion:   getEnv("STORAGE_REGION", ""),
		StorageAccess:   getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecret:   getEnv("STORAGE_SECRET_KEY", ""),
		StorageEndpoint: getEnv("STORAGE_ENDPOINT", ""),
		StorageCDN:      getEnv("STORAGE_CDN_DOMAIN", ""),
		StorageBasePath: getEnv("STORAGE_BASE_PATH", "shop"),
		StorageLocalDir: getEnv("STORAGE_LOCAL_DIR", "uploads"),

		DispatchWorkers:   getEnvInt("DISPATCH_WORKERS", 2),
		DispatchQueueSize: getEnvInt("DISPATCH_QUEUE_SIZE", 256),

		OrderCooldown: time.Duration(getEnvInt("ORDER_COOLDOWN_SECONDS", 30)) * time.Second,

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "UAH"),
	}
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/middleware"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupAdminTest(t *testing.T) (*gorm.DB, *AdminService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Admin{})
	return db, NewAdminService(repository.NewAdminRepository(db))
}

// ==================== 单元测试 ====================

func TestAdminService_BootstrapAndLogin(t *testing.T) {
	db, svc := setupAdminTest(t)
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "Admin@Example.com", "secret"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	// 邮箱小写入库，密码为 bcrypt hash
	var admin model.Admin
	if err := db.Where("email = ?", "admin@example.com").First(&admin).Error; err != nil {
		t.Fatalf("管理员未创建: %v", err)
	}
	if admin.Password == "secret" {
		t.Error("密码不应明文存储")
	}

	// 登录成功（邮箱大小写不敏感）
	tokens, err := svc.Login(ctx, &dto.LoginRequest{Email: "ADMIN@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.TokenType != "Bearer" {
		t.Errorf("令牌响应不完整: %+v", tokens)
	}

	// 密码错误
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "wrong"}); !apperr.IsUnauthorized(err) {
		t.Errorf("错误密码 err = %v, want ErrUnauthorized", err)
	}

	// 账号不存在时同样的错误，不泄露存在性
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "x"}); !apperr.IsUnauthorized(err) {
		t.Errorf("不存在账号 err = %v, want ErrUnauthorized", err)
	}
}

func TestAdminService_BootstrapResetsPassword(t *testing.T) {
	_, svc := setupAdminTest(t)
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "admin@example.com", "old"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	// 环境变量换了密码，再次启动时重置
	if err := svc.Bootstrap(ctx, "admin@example.com", "new"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "new"}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "old"}); !apperr.IsUnauthorized(err) {
		t.Errorf("旧密码 err = %v, want ErrUnauthorized", err)
	}
}

func TestAdminService_Refresh(t *testing.T) {
	_, svc := setupAdminTest(t)
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "admin@example.com", "secret"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	tokens, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// refresh token 换新令牌对
	renewed, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if renewed.AccessToken == "" {
		t.Error("应返回新 access token")
	}

	// access token 不能当 refresh token 用
	if _, err := svc.Refresh(ctx, tokens.AccessToken); !apperr.IsUnauthorized(err) {
		t.Errorf("access token 换新 err = %v, want ErrUnauthorized", err)
	}

	// 垃圾 token
	if _, err := svc.Refresh(ctx, "not-a-token"); !apperr.IsUnauthorized(err) {
		t.Errorf("非法 token err = %v, want ErrUnauthorized", err)
	}
}

func TestAdminService_DisabledAccount(t *testing.T) {
	db, svc := setupAdminTest(t)
	ctx := context.Background()

	if err := svc.Bootstrap(ctx, "admin@example.com", "secret"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	tokens, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	db.Model(&model.Admin{}).Where("email = ?", "admin@example.com").Update("is_active", false)

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "secret"}); !apperr.IsUnauthorized(err) {
		t.Errorf("停用账号登录 err = %v, want ErrUnauthorized", err)
	}
	// 停用后 refresh 也失效
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !apperr.IsUnauthorized(err) {
		t.Errorf("停用账号刷新 err = %v, want ErrUnauthorized", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	access, _, err := middleware.GenerateTokenPair(7, "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	claims, err := middleware.ParseToken(access)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.AdminID != 7 || claims.Email != "admin@example.com" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != "access" {
		t.Errorf("subject = %q, want access", claims.Subject)
	}
}

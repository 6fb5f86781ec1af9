package service

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/middleware"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// AdminService 管理员认证服务
type AdminService struct {
	repo repository.AdminRepository
}

// NewAdminService 创建管理员服务
func NewAdminService(repo repository.AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

// ==================== 初始化 ====================

// Bootstrap 按环境变量保证初始管理员存在
// 账号不存在时创建；已存在但密码对不上时按环境变量重置
func (s *AdminService) Bootstrap(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return apperr.Invalidf("admin email or password is empty")
	}

	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = &model.Admin{
			Email:    email,
			Password: string(hash),
			Role:     "admin",
			IsActive: true,
		}
		if err := s.repo.Create(ctx, admin); err != nil {
			return err
		}
		log.Printf("[AdminService] 初始管理员 %s 已创建", email)
		return nil
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateFields(ctx, admin.ID, map[string]interface{}{
			"password": string(hash),
		}); err != nil {
			return err
		}
		log.Printf("[AdminService] 管理员 %s 密码已按环境变量重置", email)
	}
	return nil
}

// ==================== 认证 ====================

// Login 邮箱密码登录，成功返回令牌对
func (s *AdminService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.Unauthorizedf("invalid credentials")
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, apperr.Unauthorizedf("account is disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		return nil, apperr.Unauthorizedf("invalid credentials")
	}

	now := time.Now()
	if err := s.repo.UpdateFields(ctx, admin.ID, map[string]interface{}{
		"last_login_at": now,
	}); err != nil {
		log.Printf("[AdminService] 更新管理员 %d 登录时间失败: %v", admin.ID, err)
	}

	return s.issueTokens(admin)
}

// Refresh 用 refresh token 换新令牌对
func (s *AdminService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := middleware.ParseToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorizedf("invalid refresh token")
	}
	if claims.Subject != "refresh" {
		return nil, apperr.Unauthorizedf("not a refresh token")
	}

	admin, err := s.repo.GetByID(ctx, claims.AdminID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.Unauthorizedf("account not found")
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, apperr.Unauthorizedf("account is disabled")
	}

	return s.issueTokens(admin)
}

// Profile 当前管理员信息
func (s *AdminService) Profile(ctx context.Context, adminID int64) (*model.Admin, error) {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("admin", adminID)
		}
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) issueTokens(admin *model.Admin) (*dto.TokenResponse, error) {
	access, refresh, err := middleware.GenerateTokenPair(admin.ID, admin.Email, admin.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(middleware.GetJWTConfig().AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

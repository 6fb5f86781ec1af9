package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 审计上下文 ====================

type auditContextKey struct{}

// AuditInfo 审计信息
type AuditInfo struct {
	AdminID int64
	Email   string
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, adminID int64, email string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{
		AdminID: adminID,
		Email:   email,
	})
}

// GetAuditInfo 从 context 获取审计信息
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件
// 将 JWT 中的管理员信息注入 request context，并记录全部写操作
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := GetAdminID(c)
		email := GetAdminEmail(c)

		if adminID > 0 {
			ctx := WithAuditInfo(c.Request.Context(), adminID, email)
			c.Request = c.Request.WithContext(ctx)
		}

		start := time.Now()
		c.Next()

		// 只审计写操作
		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
			log.Printf("[Audit] admin=%d(%s) %s %s status=%d cost=%s",
				adminID, email,
				c.Request.Method, c.Request.URL.Path,
				c.Writer.Status(), time.Since(start))
		}
	}
}

package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop_admin_v1_202608/internal/apperr"
)

// ==================== 统一响应 ====================

// ok 成功响应
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

// created 创建成功响应
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"code": 0, "message": "success", "data": data})
}

// badRequest 参数错误响应
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
}

// fail 按错误类别映射 HTTP 状态码
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperr.IsInvalid(err):
		status = http.StatusBadRequest
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
	case apperr.IsConflict(err):
		status = http.StatusConflict
	case apperr.IsUnauthorized(err):
		status = http.StatusUnauthorized
	case apperr.IsForbidden(err):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"code": status, "message": err.Error()})
}

// ==================== 参数解析 ====================

// pathID 解析路径中的数字 ID
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的 " + name})
		return 0, false
	}
	return id, true
}

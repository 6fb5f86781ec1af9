package apperr

import (
	"errors"
	"fmt"
)

// ==================== 错误类别 ====================

// 全局错误类别，service 层统一使用，controller 层据此映射 HTTP 状态码
var (
	ErrInvalid      = errors.New("invalid")      // 参数非法或前置条件不满足
	ErrNotFound     = errors.New("not found")    // 实体不存在
	ErrConflict     = errors.New("conflict")     // 唯一性冲突
	ErrUnauthorized = errors.New("unauthorized") // 未认证
	ErrForbidden    = errors.New("forbidden")    // 无权限
)

// ==================== 构造函数 ====================

// Invalidf 参数错误，msg 中应包含出错的字段/ID
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// NotFoundf 实体不存在
func NotFoundf(entity string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s (%v)", ErrNotFound, entity, args)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

// Conflictf 唯一性冲突
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Unauthorizedf 认证失败
func Unauthorizedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// ==================== 判断辅助 ====================

func IsInvalid(err error) bool      { return errors.Is(err, ErrInvalid) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }

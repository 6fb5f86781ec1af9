package repository

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// SortUpdate 批量排序更新项
type SortUpdate struct {
	ID        int64 `json:"id"`
	SortOrder int   `json:"sort_order"`
}

// IsDuplicateKey 是否唯一索引冲突
// postgres 驱动翻译为 gorm.ErrDuplicatedKey，sqlite（测试）报 UNIQUE constraint
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}

// IsRecordNotFound 是否记录不存在
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// jsonArrayContainsClause 构造"JSON 数组列包含某 ID"的查询条件
// postgres 走 jsonb 包含运算，其他方言（sqlite 测试库）用 json_each 展开
func jsonArrayContainsClause(db *gorm.DB, column string, id int64) (string, interface{}) {
	if db.Dialector.Name() == "postgres" {
		return column + " @> ?", strconv.FormatInt(id, 10)
	}
	return "(" + column + " IS NOT NULL AND EXISTS (SELECT 1 FROM json_each(" + column + ") WHERE json_each.value = ?))", id
}

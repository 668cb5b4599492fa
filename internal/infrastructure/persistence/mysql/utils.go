package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// isDuplicateError 判断是否为唯一索引冲突
// MySQL: 1062 Duplicate entry；SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// dbError 数据库错误统一包装
func dbError(err error, msg string) error {
	return apperrors.WithCode(apperrors.ErrCodeDatabaseError, msg, err)
}

// =========================================
// 泛型辅助函数：各仓储共用
// =========================================

// findByID 按主键查询，不存在返回notFound
func findByID[M any](db *gorm.DB, id any, notFound error) (*M, error) {
	var m M
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, dbError(err, "查询记录失败")
	}
	return &m, nil
}

// deleteByID 按主键删除，没有删除任何行返回notFound
func deleteByID[M any](db *gorm.DB, id any, notFound error) error {
	result := db.Where("id = ?", id).Delete(new(M))
	if result.Error != nil {
		return dbError(result.Error, "删除记录失败")
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

// count 按条件计数
func count[M any](db *gorm.DB, query any, args ...any) (int64, error) {
	var n int64
	q := db.Model(new(M))
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, dbError(err, "统计记录失败")
	}
	return n, nil
}

// paginate 分页查询：先查总数，再按order取当前页
// page从1开始；pageSize<=0时不分页
func paginate[M any](query *gorm.DB, page, pageSize int, order string) ([]M, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, dbError(err, "查询总数失败")
	}

	q := query.Session(&gorm.Session{}).Order(order)
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		q = q.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	var models []M
	if err := q.Find(&models).Error; err != nil {
		return nil, 0, dbError(err, "查询列表失败")
	}
	return models, total, nil
}

// likePattern 模糊查询参数
func likePattern(keyword string) string {
	return "%" + strings.TrimSpace(keyword) + "%"
}

package mysql

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB
// 3. 嵌套调用时GORM自动使用Savepoint
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内所有仓储操作(通过getDB取连接)都在同一事务中执行，fn返回error时回滚
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := instanceRepo.ClearBorrower(ctx, userID); err != nil {
//	        return err
//	    }
//	    return userRepo.Delete(ctx, userID)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return getDB(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// getDB 从context获取事务DB，没有则使用默认DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// base 仓储公共部分
type base struct {
	db *gorm.DB
}

func (b base) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, b.db)
}

// inTx 已在事务中则直接执行，否则开启新事务
func (b base) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return b.getDB(ctx).Transaction(fn)
}

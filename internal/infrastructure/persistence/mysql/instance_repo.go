package mysql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/instance"
)

// instanceRepository 馆藏副本仓储实现
type instanceRepository struct {
	base
}

// NewInstanceRepository 创建馆藏副本仓储
func NewInstanceRepository(db *gorm.DB) instance.Repository {
	return &instanceRepository{base{db: db}}
}

func (r *instanceRepository) Create(ctx context.Context, inst *instance.BookInstance) error {
	model := toInstanceModel(inst)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return dbError(err, "创建馆藏副本失败")
	}
	inst.CreatedAt = model.CreatedAt
	inst.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *instanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*instance.BookInstance, error) {
	model, err := findByID[BookInstanceModel](r.getDB(ctx), id, instance.ErrInstanceNotFound)
	if err != nil {
		return nil, err
	}
	return toInstanceEntity(model), nil
}

func (r *instanceRepository) UpdateImprint(ctx context.Context, inst *instance.BookInstance) error {
	result := r.getDB(ctx).Model(&BookInstanceModel{}).
		Where("id = ?", inst.ID).
		Updates(map[string]any{"imprint": inst.Imprint, "updated_at": inst.UpdatedAt})
	if result.Error != nil {
		return dbError(result.Error, "更新馆藏副本失败")
	}
	if result.RowsAffected == 0 {
		return instance.ErrInstanceNotFound
	}
	return nil
}

// UpdateStatus 比较并交换
// UPDATE book_instances SET status=?, borrower_id=? WHERE id=? AND status=<from>
// 没有命中时再查一次区分"不存在"和"已被他人修改"
func (r *instanceRepository) UpdateStatus(ctx context.Context, inst *instance.BookInstance, from instance.Status) error {
	db := r.getDB(ctx)
	if inst.UpdatedAt.IsZero() {
		inst.UpdatedAt = time.Now()
	}

	var borrower any = gorm.Expr("NULL")
	if inst.BorrowerID != nil {
		borrower = *inst.BorrowerID
	}

	result := db.Model(&BookInstanceModel{}).
		Where("id = ? AND status = ?", inst.ID, string(from)).
		Updates(map[string]any{
			"status":      string(inst.Status),
			"borrower_id": borrower,
			"updated_at":  inst.UpdatedAt,
		})
	if result.Error != nil {
		return dbError(result.Error, "更新副本状态失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	n, err := count[BookInstanceModel](db, "id = ?", inst.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return instance.ErrInstanceNotFound
	}
	return instance.ErrStatusConflict
}

func (r *instanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[BookInstanceModel](r.getDB(ctx), id, instance.ErrInstanceNotFound)
}

func (r *instanceRepository) ListByBook(ctx context.Context, bookID uint) ([]*instance.BookInstance, error) {
	return r.find(ctx, "查询图书副本失败", "book_id = ?", bookID)
}

func (r *instanceRepository) ListByBorrower(ctx context.Context, borrowerID uint, status instance.Status) ([]*instance.BookInstance, error) {
	if status == "" {
		return r.find(ctx, "查询借阅记录失败", "borrower_id = ?", borrowerID)
	}
	return r.find(ctx, "查询借阅记录失败", "borrower_id = ? AND status = ?", borrowerID, string(status))
}

func (r *instanceRepository) ListLoaned(ctx context.Context) ([]*instance.BookInstance, error) {
	return r.find(ctx, "查询借出记录失败", "borrower_id IS NOT NULL")
}

// ClearBorrower 借阅人置空，状态保持不变
func (r *instanceRepository) ClearBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	result := r.getDB(ctx).Model(&BookInstanceModel{}).
		Where("borrower_id = ?", borrowerID).
		Updates(map[string]any{"borrower_id": gorm.Expr("NULL"), "updated_at": time.Now()})
	if result.Error != nil {
		return 0, dbError(result.Error, "清除借阅人失败")
	}
	return result.RowsAffected, nil
}

func (r *instanceRepository) find(ctx context.Context, errMsg string, query string, args ...any) ([]*instance.BookInstance, error) {
	var models []BookInstanceModel
	if err := r.getDB(ctx).Where(query, args...).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, dbError(err, errMsg)
	}
	out := make([]*instance.BookInstance, len(models))
	for i := range models {
		out[i] = toInstanceEntity(&models[i])
	}
	return out, nil
}

func toInstanceModel(inst *instance.BookInstance) *BookInstanceModel {
	return &BookInstanceModel{
		ID:         inst.ID,
		BookID:     inst.BookID,
		Imprint:    inst.Imprint,
		BorrowerID: inst.BorrowerID,
		Status:     string(inst.Status),
		CreatedAt:  inst.CreatedAt,
		UpdatedAt:  inst.UpdatedAt,
	}
}

func toInstanceEntity(m *BookInstanceModel) *instance.BookInstance {
	return &instance.BookInstance{
		ID:         m.ID,
		BookID:     m.BookID,
		Imprint:    m.Imprint,
		BorrowerID: m.BorrowerID,
		Status:     instance.Status(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/pkg/metrics"
	"github.com/xiebiao/library-catalog/pkg/mq"
	"github.com/xiebiao/library-catalog/pkg/tracing"
)

// EventPrefix 借阅事件routing key前缀，完整key为loan.<status>
const EventPrefix = "loan."

// UseCase 借阅流程用例
// 设计说明:
// 1. 借出、预约、归还都归结为一次SetStatus
// 2. 成功后记录指标并发布loan.<status>事件；事件发布失败只记日志，不回滚已提交的状态
// 3. 每次流转包一个Span，便于在链路里看到CAS冲突
type UseCase struct {
	instances instance.Service
	publisher mq.EventPublisher
}

// NewUseCase publisher为nil时不发布事件
func NewUseCase(instances instance.Service, publisher mq.EventPublisher) *UseCase {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &UseCase{instances: instances, publisher: publisher}
}

// CreateInstanceRequest 新增副本
type CreateInstanceRequest struct {
	BookID     uint
	Imprint    string
	Status     string // 为空时默认unavailable
	BorrowerID *uint
}

// InstanceItem 副本DTO
type InstanceItem struct {
	ID          string  `json:"id"`
	BookID      uint    `json:"book_id"`
	Imprint     string  `json:"imprint"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"status_label"`
	BorrowerID  *uint   `json:"borrower_id"`
	UpdatedAt   string  `json:"updated_at"`
	From        *string `json:"from,omitempty"` // 仅状态变更的响应中出现
}

// Event loan.<status>事件负载
type Event struct {
	InstanceID string `json:"instance_id"`
	BookID     uint   `json:"book_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	BorrowerID *uint  `json:"borrower_id,omitempty"`
	ActorID    uint   `json:"actor_id"`
}

func (uc *UseCase) CreateInstance(ctx context.Context, actor identity.Identity, req CreateInstanceRequest) (*InstanceItem, error) {
	status, err := instance.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	inst, err := uc.instances.CreateInstance(ctx, actor, instance.CreateInput{
		BookID:     req.BookID,
		Imprint:    req.Imprint,
		Status:     status,
		BorrowerID: req.BorrowerID,
	})
	if err != nil {
		recordDenied(err, identity.CapAddEditInstance)
		return nil, err
	}

	metrics.RecordInstanceCreated()
	item := ToInstanceItem(inst)
	return &item, nil
}

// Checkout 借出给borrowerID
func (uc *UseCase) Checkout(ctx context.Context, actor identity.Identity, id uuid.UUID, borrowerID uint) (*InstanceItem, error) {
	return uc.SetStatus(ctx, actor, id, string(instance.StatusCheckedOut), &borrowerID)
}

// Reserve 为borrowerID预约
func (uc *UseCase) Reserve(ctx context.Context, actor identity.Identity, id uuid.UUID, borrowerID uint) (*InstanceItem, error) {
	return uc.SetStatus(ctx, actor, id, string(instance.StatusReserved), &borrowerID)
}

// Return 归还(或取消预约)，借阅人清空
func (uc *UseCase) Return(ctx context.Context, actor identity.Identity, id uuid.UUID) (*InstanceItem, error) {
	return uc.SetStatus(ctx, actor, id, string(instance.StatusAvailable), nil)
}

// SetStatus 通用状态变更
func (uc *UseCase) SetStatus(ctx context.Context, actor identity.Identity, id uuid.UUID, status string, borrower *uint) (item *InstanceItem, err error) {
	ctx, span := tracing.StartSpan(ctx, tracing.TracerName, "instance.SetStatus",
		trace.WithAttributes(
			attribute.String("instance.id", id.String()),
			attribute.String("instance.to", status),
		),
	)
	defer func() { tracing.EndSpan(span, err) }()

	to, err := instance.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	tr, err := uc.instances.SetStatus(ctx, actor, id, to, borrower)
	if err != nil {
		switch {
		case errors.Is(err, instance.ErrStatusConflict):
			metrics.RecordLoanConflict()
		default:
			recordDenied(err, identity.CapAddEditInstance)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("instance.from", string(tr.From)))
	metrics.RecordLoanTransition(string(tr.From), string(tr.To))
	uc.publish(ctx, actor, tr)

	out := ToInstanceItem(tr.Instance)
	from := string(tr.From)
	out.From = &from
	return &out, nil
}

func (uc *UseCase) UpdateImprint(ctx context.Context, actor identity.Identity, id uuid.UUID, imprint string) (*InstanceItem, error) {
	inst, err := uc.instances.UpdateImprint(ctx, actor, id, imprint)
	if err != nil {
		recordDenied(err, identity.CapAddEditInstance)
		return nil, err
	}
	item := ToInstanceItem(inst)
	return &item, nil
}

func (uc *UseCase) Delete(ctx context.Context, actor identity.Identity, id uuid.UUID) error {
	err := uc.instances.Delete(ctx, actor, id)
	recordDenied(err, identity.CapAddEditInstance)
	return err
}

func (uc *UseCase) Get(ctx context.Context, id uuid.UUID) (*InstanceItem, error) {
	inst, err := uc.instances.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item := ToInstanceItem(inst)
	return &item, nil
}

func (uc *UseCase) ListByBook(ctx context.Context, bookID uint) ([]InstanceItem, error) {
	list, err := uc.instances.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return ToInstanceItems(list), nil
}

// MyLoans 当前用户借出中的副本
func (uc *UseCase) MyLoans(ctx context.Context, actor identity.Identity) ([]InstanceItem, error) {
	if err := identity.RequireLogin(actor); err != nil {
		return nil, err
	}
	list, err := uc.instances.ListByBorrower(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return ToInstanceItems(list), nil
}

// AllLoans 全部有借阅人的副本(馆员视图)
func (uc *UseCase) AllLoans(ctx context.Context, actor identity.Identity) ([]InstanceItem, error) {
	list, err := uc.instances.ListAllLoaned(ctx, actor)
	if err != nil {
		recordDenied(err, identity.CapMarkReturned)
		return nil, err
	}
	return ToInstanceItems(list), nil
}

func (uc *UseCase) publish(ctx context.Context, actor identity.Identity, tr *instance.Transition) {
	key := EventPrefix + string(tr.To)
	ev := mq.NewEvent(key, Event{
		InstanceID: tr.Instance.ID.String(),
		BookID:     tr.Instance.BookID,
		From:       string(tr.From),
		To:         string(tr.To),
		BorrowerID: tr.Instance.BorrowerID,
		ActorID:    actor.UserID,
	})
	if err := uc.publisher.Publish(ctx, key, ev); err != nil {
		slog.WarnContext(ctx, "发布借阅事件失败", "routing_key", key, "instance_id", tr.Instance.ID.String(), "error", err)
	}
}

func recordDenied(err error, c identity.Capability) {
	if errors.Is(err, identity.ErrPermissionDenied) {
		metrics.RecordPermissionDenied(string(c))
	}
}

// ToInstanceItem 领域实体 → DTO
func ToInstanceItem(inst *instance.BookInstance) InstanceItem {
	return InstanceItem{
		ID:          inst.ID.String(),
		BookID:      inst.BookID,
		Imprint:     inst.Imprint,
		Status:      string(inst.Status),
		StatusLabel: inst.Status.Label(),
		BorrowerID:  inst.BorrowerID,
		UpdatedAt:   inst.UpdatedAt.Format(time.DateTime),
	}
}

// ToInstanceItems 批量转换
func ToInstanceItems(list []*instance.BookInstance) []InstanceItem {
	out := make([]InstanceItem, len(list))
	for i, inst := range list {
		out[i] = ToInstanceItem(inst)
	}
	return out
}

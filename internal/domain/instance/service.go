package instance

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
)

// Transition 一次成功的状态流转
type Transition struct {
	Instance *BookInstance
	From     Status
	To       Status
}

// CreateInput 创建副本参数
type CreateInput struct {
	BookID     uint
	Imprint    string
	Status     Status // 为空时默认unavailable
	BorrowerID *uint
}

// Service 馆藏副本领域服务
// 设计说明:
// 1. 变更操作需要catalog.add_bookinstance；归还(借出/预约→可借)也接受catalog.can_mark_returned
// 2. 状态写入走比较并交换，并发修改同一副本时后到者得到ErrStatusConflict
// 3. 借阅人必须是已存在的用户
type Service interface {
	CreateInstance(ctx context.Context, actor identity.Identity, in CreateInput) (*BookInstance, error)
	SetStatus(ctx context.Context, actor identity.Identity, id uuid.UUID, to Status, borrower *uint) (*Transition, error)
	UpdateImprint(ctx context.Context, actor identity.Identity, id uuid.UUID, imprint string) (*BookInstance, error)
	Delete(ctx context.Context, actor identity.Identity, id uuid.UUID) error

	Get(ctx context.Context, id uuid.UUID) (*BookInstance, error)
	// ListByBook 图书不存在返回ErrBookNotFound
	ListByBook(ctx context.Context, bookID uint) ([]*BookInstance, error)
	// ListByBorrower 只返回checked_out状态的副本
	ListByBorrower(ctx context.Context, borrowerID uint) ([]*BookInstance, error)
	// ListAllLoaned 借阅人非空的全部副本，需要catalog.can_mark_returned
	ListAllLoaned(ctx context.Context, actor identity.Identity) ([]*BookInstance, error)
}

type service struct {
	repo      Repository
	books     BookChecker
	directory identity.Directory
	checker   identity.Checker
	policy    Policy
}

// NewService 创建馆藏副本领域服务
func NewService(repo Repository, books BookChecker, directory identity.Directory, checker identity.Checker, policy Policy) Service {
	return &service{
		repo:      repo,
		books:     books,
		directory: directory,
		checker:   checker,
		policy:    policy,
	}
}

func (s *service) CreateInstance(ctx context.Context, actor identity.Identity, in CreateInput) (*BookInstance, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapAddEditInstance); err != nil {
		return nil, err
	}

	inst, err := NewBookInstance(in.BookID, in.Imprint, in.Status, in.BorrowerID)
	if err != nil {
		return nil, err
	}

	exists, err := s.books.Exists(ctx, in.BookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrBookReference
	}
	if err := s.checkBorrower(ctx, in.BorrowerID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// SetStatus 变更状态
// 流程: 鉴权(需登录) → 读取当前状态 → 按当前状态鉴权 → 状态机校验 → 借阅人校验 → CAS写入
func (s *service) SetStatus(ctx context.Context, actor identity.Identity, id uuid.UUID, to Status, borrower *uint) (*Transition, error) {
	if err := identity.RequireLogin(actor); err != nil {
		return nil, err
	}

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := inst.Status

	if err := s.authorizeStatus(ctx, actor, from, to); err != nil {
		return nil, err
	}
	if err := inst.TransitionTo(to, borrower, s.policy); err != nil {
		return nil, err
	}
	if err := s.checkBorrower(ctx, borrower); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, inst, from); err != nil {
		return nil, err
	}
	return &Transition{Instance: inst, From: from, To: to}, nil
}

func (s *service) UpdateImprint(ctx context.Context, actor identity.Identity, id uuid.UUID, imprint string) (*BookInstance, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapAddEditInstance); err != nil {
		return nil, err
	}

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inst.SetImprint(imprint); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateImprint(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *service) Delete(ctx context.Context, actor identity.Identity, id uuid.UUID) error {
	if err := identity.Require(ctx, s.checker, actor, identity.CapAddEditInstance); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookInstance, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*BookInstance, error) {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrBookNotFound
	}
	return s.repo.ListByBook(ctx, bookID)
}

func (s *service) ListByBorrower(ctx context.Context, borrowerID uint) ([]*BookInstance, error) {
	return s.repo.ListByBorrower(ctx, borrowerID, StatusCheckedOut)
}

func (s *service) ListAllLoaned(ctx context.Context, actor identity.Identity) ([]*BookInstance, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapMarkReturned); err != nil {
		return nil, err
	}
	return s.repo.ListLoaned(ctx)
}

// authorizeStatus 编辑权限可做任何流转；只有归还权限时仅允许归还
func (s *service) authorizeStatus(ctx context.Context, actor identity.Identity, from, to Status) error {
	err := identity.Require(ctx, s.checker, actor, identity.CapAddEditInstance)
	if err == nil || !errors.Is(err, identity.ErrPermissionDenied) {
		return err
	}
	if from.IsLoaned() && to == StatusAvailable {
		return identity.Require(ctx, s.checker, actor, identity.CapMarkReturned)
	}
	return err
}

func (s *service) checkBorrower(ctx context.Context, borrower *uint) error {
	if borrower == nil {
		return nil
	}
	exists, err := s.directory.Exists(ctx, *borrower)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInvalidBorrower
	}
	return nil
}

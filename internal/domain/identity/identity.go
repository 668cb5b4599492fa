package identity

import (
	"context"

	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// Identity 调用方身份
// UserID为0表示匿名用户
type Identity struct {
	UserID uint
}

// Anonymous 匿名身份
func Anonymous() Identity {
	return Identity{}
}

// User 已登录用户身份
func User(userID uint) Identity {
	return Identity{UserID: userID}
}

// IsAnonymous 是否匿名
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// Capability 能力（具名的权限授予）
type Capability string

// 能力定义，命名沿用 app_label.codename 的习惯
const (
	CapAddEditInstance Capability = "catalog.add_bookinstance"  // 新增/编辑馆藏副本、变更借阅状态
	CapMarkReturned    Capability = "catalog.can_mark_returned" // 标记归还、查看全部借出
	CapAddBook         Capability = "catalog.add_book"
	CapChangeBook      Capability = "catalog.change_book"
	CapDeleteBook      Capability = "catalog.delete_book"
	CapAddAuthor       Capability = "catalog.add_author"
	CapChangeAuthor    Capability = "catalog.change_author"
	CapDeleteAuthor    Capability = "catalog.delete_author"
	CapAddGenre        Capability = "catalog.add_genre"
	CapChangeGenre     Capability = "catalog.change_genre"
	CapDeleteGenre     Capability = "catalog.delete_genre"
	CapDeleteUser      Capability = "auth.delete_user"
)

var allCapabilities = []Capability{
	CapAddEditInstance,
	CapMarkReturned,
	CapAddBook,
	CapChangeBook,
	CapDeleteBook,
	CapAddAuthor,
	CapChangeAuthor,
	CapDeleteAuthor,
	CapAddGenre,
	CapChangeGenre,
	CapDeleteGenre,
	CapDeleteUser,
}

// AllCapabilities 返回全部已定义的能力
func AllCapabilities() []Capability {
	out := make([]Capability, len(allCapabilities))
	copy(out, allCapabilities)
	return out
}

// Valid 是否为已定义的能力
func (c Capability) Valid() bool {
	for _, known := range allCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// ErrPermissionDenied 缺少所需能力
var ErrPermissionDenied = apperrors.New(apperrors.ErrCodeForbidden, "无权限执行此操作")

// Checker 能力校验接口（由infrastructure层实现）
type Checker interface {
	HasCapability(ctx context.Context, id Identity, c Capability) (bool, error)
}

// Directory 用户目录，用于校验借阅人等引用是否存在
type Directory interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// Require 在变更操作开始前调用，满足任意一个能力即通过
// 匿名用户永远没有能力
func Require(ctx context.Context, checker Checker, id Identity, caps ...Capability) error {
	if id.IsAnonymous() {
		return ErrPermissionDenied
	}
	for _, c := range caps {
		ok, err := checker.HasCapability(ctx, id, c)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrPermissionDenied
}

// RequireLogin 只要求非匿名
func RequireLogin(id Identity) error {
	if id.IsAnonymous() {
		return ErrPermissionDenied
	}
	return nil
}

// =========================================
// Context传递
// =========================================

type ctxKey struct{}

// WithIdentity 把当前身份写入Context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext 读取当前身份，没有则为匿名
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}

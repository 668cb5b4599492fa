package user

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library-catalog/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 新用户没有任何能力，馆员能力通过catalogctl grant授予
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{
		userService: userService,
	}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "新用户注册", "user_id", u.ID)
	return toUserInfo(u), nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// UserInfo 用户信息，不含密码
type UserInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}

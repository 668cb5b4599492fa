package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "[40400] 资源不存在", New(ErrCodeNotFound, "资源不存在").Error())

	wrapped := Wrap(errors.New("connection refused"), "查询失败")
	assert.Equal(t, "[50000] 查询失败: connection refused", wrapped.Error())
	assert.Equal(t, "connection refused", errors.Unwrap(wrapped).Error())
}

func TestGetAppError(t *testing.T) {
	appErr := GetAppError(fmt.Errorf("outer: %w", ErrUnauthorized))
	assert.Equal(t, ErrCodeUnauthorized, appErr.Code)

	plain := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.EqualError(t, plain.Err, "boom")
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		unique     bool
		invalidRef bool
		denied     bool
	}{
		{name: "nil", err: nil},
		{name: "普通错误", err: errors.New("x")},
		{name: "用户不存在", err: ErrUserNotFound, notFound: true},
		{name: "副本不存在", err: New(ErrCodeInstanceNotFound, "副本不存在"), notFound: true},
		{name: "ISBN重复", err: New(ErrCodeISBNDuplicate, "ISBN号已存在"), unique: true},
		{name: "邮箱重复", err: ErrEmailDuplicate, unique: true},
		{name: "无效引用", err: New(ErrCodeInvalidReference, "作者不存在"), invalidRef: true},
		{name: "无权限", err: fmt.Errorf("wrap: %w", ErrForbidden), denied: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.unique, IsUniqueViolation(tt.err))
			assert.Equal(t, tt.invalidRef, IsInvalidReference(tt.err))
			assert.Equal(t, tt.denied, IsPermissionDenied(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, 0, CodeOf(nil))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("x")))
	assert.Equal(t, ErrCodeBorrowerRequired, CodeOf(WithCode(ErrCodeBorrowerRequired, "缺少借阅人", errors.New("x"))))
}

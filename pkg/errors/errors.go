package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithCode 保留业务码的同时附带内部错误
func WithCode(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeMQError       = 50003 // 消息队列错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限（缺少能力授权）

	// 资源错误（40400-40499）
	ErrCodeNotFound         = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound     = 40401 // 用户不存在
	ErrCodeBookNotFound     = 40402 // 图书不存在
	ErrCodeAuthorNotFound   = 40403 // 作者不存在
	ErrCodeGenreNotFound    = 40404 // 类型不存在
	ErrCodeInstanceNotFound = 40405 // 馆藏副本不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError           = 40000 // 业务错误(通用)
	ErrCodeStatusConflict          = 40001 // 副本状态已被他人修改
	ErrCodeInvalidStatusTransition = 40002 // 副本状态流转非法
	ErrCodeEmailDuplicate          = 40003 // 邮箱已存在
	ErrCodeISBNDuplicate           = 40004 // ISBN已存在
	ErrCodeWeakPassword            = 40005 // 密码强度不足
	ErrCodeTooManyRequests         = 40006 // 请求过于频繁
	ErrCodeDuplicateEntry          = 40009 // 重复记录(通用)
	ErrCodeInvalidReference        = 40010 // 引用的关联记录不存在
	ErrCodeBookHasInstances        = 40011 // 图书仍有馆藏副本
	ErrCodeInvalidRating           = 40012 // 评分超出范围
	ErrCodeBorrowerRequired        = 40013 // 缺少借阅人
	ErrCodeBorrowerNotAllowed      = 40014 // 当前状态不允许借阅人

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 业务规则
	ErrEmailDuplicate  = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword    = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// CodeOf 返回错误码，非AppError返回ErrCodeInternal，nil返回0
func CodeOf(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// 以下判断按错误"种类"而非具体实例，调用方不需要知道是哪个领域抛出的

// IsNotFound 资源不存在（404xx）
func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code >= ErrCodeNotFound && code < ErrCodeNotFound+100
}

// IsUniqueViolation 唯一约束冲突
func IsUniqueViolation(err error) bool {
	switch CodeOf(err) {
	case ErrCodeISBNDuplicate, ErrCodeEmailDuplicate, ErrCodeDuplicateEntry:
		return true
	}
	return false
}

// IsInvalidReference 外键指向不存在的记录
func IsInvalidReference(err error) bool {
	return CodeOf(err) == ErrCodeInvalidReference
}

// IsPermissionDenied 调用方缺少所需能力
func IsPermissionDenied(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

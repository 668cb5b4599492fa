package instance

import (
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// 馆藏副本领域错误定义
var (
	ErrInstanceNotFound = apperrors.New(apperrors.ErrCodeInstanceNotFound, "馆藏副本不存在")
	ErrBookNotFound     = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// 状态机
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStatusTransition, "副本状态不允许此流转")
	ErrStatusConflict          = apperrors.New(apperrors.ErrCodeStatusConflict, "副本状态已被修改，请刷新后重试")
	ErrBorrowerRequired        = apperrors.New(apperrors.ErrCodeBorrowerRequired, "预约或借出必须指定借阅人")
	ErrBorrowerNotAllowed      = apperrors.New(apperrors.ErrCodeBorrowerNotAllowed, "可借或维护状态不能指定借阅人")

	// 关联引用
	ErrInvalidBorrower = apperrors.New(apperrors.ErrCodeInvalidReference, "借阅人不存在")
	ErrBookReference   = apperrors.New(apperrors.ErrCodeInvalidReference, "关联的图书不存在")

	// 参数
	ErrInvalidStatus  = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的副本状态")
	ErrInvalidImprint = apperrors.New(apperrors.ErrCodeInvalidParams, "版本信息不能为空且不超过200字")
)

package review

import (
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// 书评领域错误定义
var (
	ErrBookNotFound  = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidRating, "评分超出允许范围")
	ErrBookReference = apperrors.New(apperrors.ErrCodeInvalidReference, "关联的图书不存在")
	ErrInvalidWriter = apperrors.New(apperrors.ErrCodeInvalidParams, "作者署名不能为空且不超过200字")
	ErrBodyTooLong   = apperrors.New(apperrors.ErrCodeInvalidParams, "书评内容不能超过2000字")
)

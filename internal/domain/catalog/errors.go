package catalog

import (
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// 目录领域错误定义
var (
	// 资源不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")
	ErrGenreNotFound  = apperrors.New(apperrors.ErrCodeGenreNotFound, "类型不存在")
	ErrBookNotFound   = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// 唯一约束
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// 关联引用
	ErrAuthorReference = apperrors.New(apperrors.ErrCodeInvalidReference, "关联的作者不存在")
	ErrGenreReference  = apperrors.New(apperrors.ErrCodeInvalidReference, "关联的类型不存在")

	// 删除限制
	ErrBookHasInstances = apperrors.New(apperrors.ErrCodeBookHasInstances, "图书仍有馆藏副本，无法删除")

	// 参数校验
	ErrInvalidISBN        = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN必须为13位数字")
	ErrInvalidTitle       = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空且不超过200字")
	ErrDescriptionTooLong = apperrors.New(apperrors.ErrCodeInvalidParams, "描述不能超过1000字")
	ErrInvalidAuthorName  = apperrors.New(apperrors.ErrCodeInvalidParams, "作者姓名不能为空，名不超过100字，姓不超过200字")
	ErrInvalidLifespan    = apperrors.New(apperrors.ErrCodeInvalidParams, "去世日期不能早于出生日期")
	ErrInvalidGenreName   = apperrors.New(apperrors.ErrCodeInvalidParams, "类型名称不能为空且不超过200字")
)

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	"github.com/xiebiao/library-catalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// bindFailed 参数绑定/校验失败
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
}

// uintParam 解析路径中的数字ID，失败时已写入响应
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的"+name)
		return 0, false
	}
	return uint(id), true
}

// uuidParam 解析路径中的副本ID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的"+name)
		return uuid.Nil, false
	}
	return id, true
}

func bindPage(c *gin.Context) (appcatalog.PageQuery, bool) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return appcatalog.PageQuery{}, false
	}
	return appcatalog.PageQuery{Page: q.Page, PageSize: q.PageSize, Keyword: q.Keyword}, true
}

package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	"github.com/xiebiao/library-catalog/internal/interface/http/dto"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	list   *appcatalog.ListAuthorsUseCase
	manage *appcatalog.ManageUseCase
}

func NewAuthorHandler(list *appcatalog.ListAuthorsUseCase, manage *appcatalog.ManageUseCase) *AuthorHandler {
	return &AuthorHandler{list: list, manage: manage}
}

// List 作者列表
// @Summary      作者列表
// @Description  按(姓, 名)排序分页
// @Tags         作者
// @Produce      json
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页条数"
// @Success      200 {object} response.Response{data=appcatalog.PageResult[appcatalog.AuthorItem]}
// @Router       /api/v1/authors [get]
func (h *AuthorHandler) List(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.list.Execute(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 作者及其图书
func (h *AuthorHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.manage.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *AuthorHandler) Create(c *gin.Context) {
	req, ok := bindAuthor(c)
	if !ok {
		return
	}
	result, err := h.manage.CreateAuthor(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindAuthor(c)
	if !ok {
		return
	}
	result, err := h.manage.UpdateAuthor(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除作者
// @Summary      删除作者
// @Description  需要catalog.delete_author能力；名下图书保留，作者置空
// @Tags         作者
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.manage.DeleteAuthor(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func bindAuthor(c *gin.Context) (appcatalog.AuthorRequest, bool) {
	var req dto.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return appcatalog.AuthorRequest{}, false
	}
	born, err := dto.ParseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		response.Error(c, err)
		return appcatalog.AuthorRequest{}, false
	}
	died, err := dto.ParseDate("date_of_death", req.DateOfDeath)
	if err != nil {
		response.Error(c, err)
		return appcatalog.AuthorRequest{}, false
	}
	return appcatalog.AuthorRequest{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: born,
		DateOfDeath: died,
	}, true
}

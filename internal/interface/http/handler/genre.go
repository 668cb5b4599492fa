package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	"github.com/xiebiao/library-catalog/internal/interface/http/dto"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// GenreHandler 类型HTTP处理器
type GenreHandler struct {
	list   *appcatalog.ListGenresUseCase
	manage *appcatalog.ManageUseCase
}

func NewGenreHandler(list *appcatalog.ListGenresUseCase, manage *appcatalog.ManageUseCase) *GenreHandler {
	return &GenreHandler{list: list, manage: manage}
}

func (h *GenreHandler) List(c *gin.Context) {
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

func (h *GenreHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.manage.GetGenre(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create 需要catalog.add_genre能力
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.manage.CreateGenre(c.Request.Context(), middleware.CurrentIdentity(c), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *GenreHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.GenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.manage.UpdateGenre(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除类型
// @Summary      删除类型
// @Description  需要catalog.delete_genre能力；图书保留，只解除关联
// @Tags         类型
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "类型ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/genres/{id} [delete]
func (h *GenreHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.manage.DeleteGenre(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

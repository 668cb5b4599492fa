package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	"github.com/xiebiao/library-catalog/internal/interface/http/dto"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	list    *appcatalog.ListBooksUseCase
	detail  *appcatalog.BookDetailUseCase
	manage  *appcatalog.ManageUseCase
	reviews *appcatalog.ReviewUseCase
	loans   *apploan.UseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	list *appcatalog.ListBooksUseCase,
	detail *appcatalog.BookDetailUseCase,
	manage *appcatalog.ManageUseCase,
	reviews *appcatalog.ReviewUseCase,
	loans *apploan.UseCase,
) *BookHandler {
	return &BookHandler{
		list:    list,
		detail:  detail,
		manage:  manage,
		reviews: reviews,
		loans:   loans,
	}
}

// List 图书列表
// @Summary      图书列表
// @Description  按书名排序分页，keyword匹配书名或ISBN
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页条数(最大100)"
// @Param        keyword   query string false "关键字"
// @Success      200 {object} response.Response{data=appcatalog.PageResult[appcatalog.BookItem]}
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
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

// Get 图书详情
// @Summary      图书详情
// @Description  图书信息、副本列表、书评、可借数量与平均评分
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appcatalog.BookDetail}
// @Failure      200 {object} response.Response "40402 图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.detail.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create 新增图书
// @Summary      新增图书
// @Description  需要catalog.add_book能力
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appcatalog.BookInfo}
// @Failure      200 {object} response.Response "40004 ISBN已存在 / 40010 作者或类型不存在 / 40104 无权限"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	req, ok := bindBook(c)
	if !ok {
		return
	}
	result, err := h.manage.CreateBook(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 修改图书，genre_ids整体替换
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	req, ok := bindBook(c)
	if !ok {
		return
	}
	result, err := h.manage.UpdateBook(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除图书，仍有副本时返回40011
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.manage.DeleteBook(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListInstances 图书的全部副本
func (h *BookHandler) ListInstances(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.loans.ListByBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateInstance 新增副本
// @Summary      新增副本
// @Description  需要catalog.add_bookinstance能力；status缺省为unavailable
// @Tags         副本
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                       true "图书ID"
// @Param        request body dto.CreateInstanceRequest true "副本信息"
// @Success      200 {object} response.Response{data=apploan.InstanceItem}
// @Router       /api/v1/books/{id}/instances [post]
func (h *BookHandler) CreateInstance(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.loans.CreateInstance(c.Request.Context(), middleware.CurrentIdentity(c), apploan.CreateInstanceRequest{
		BookID:     id,
		Imprint:    req.Imprint,
		Status:     req.Status,
		BorrowerID: req.BorrowerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListReviews 书评，按撰写日期升序
func (h *BookHandler) ListReviews(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	result, err := h.reviews.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateReview 新增书评
// @Summary      新增书评
// @Description  需要登录；stars超出评分区间返回40012
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "图书ID"
// @Param        request body dto.ReviewRequest true "书评"
// @Success      200 {object} response.Response{data=appcatalog.ReviewItem}
// @Router       /api/v1/books/{id}/reviews [post]
func (h *BookHandler) CreateReview(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	writtenAt, err := dto.ParseDate("written_at", req.WrittenAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.reviews.Add(c.Request.Context(), middleware.CurrentIdentity(c), appcatalog.AddReviewRequest{
		BookID:    id,
		Writer:    req.Writer,
		Body:      req.Body,
		Stars:     *req.Stars,
		WrittenAt: writtenAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func bindBook(c *gin.Context) (appcatalog.BookRequest, bool) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return appcatalog.BookRequest{}, false
	}
	published, err := dto.ParseDate("published_on", req.PublishedOn)
	if err != nil {
		response.Error(c, err)
		return appcatalog.BookRequest{}, false
	}
	return appcatalog.BookRequest{
		Title:       req.Title,
		ISBN:        req.ISBN,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		PublishedOn: published,
		AuthorID:    req.AuthorID,
		GenreIDs:    req.GenreIDs,
	}, true
}

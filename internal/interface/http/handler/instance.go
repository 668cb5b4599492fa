package handler

import (
	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	"github.com/xiebiao/library-catalog/internal/interface/http/dto"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// InstanceHandler 副本与借阅HTTP处理器
// 状态冲突(40001)表示副本已被他人修改，客户端应重新读取后再操作
type InstanceHandler struct {
	loans *apploan.UseCase
}

func NewInstanceHandler(loans *apploan.UseCase) *InstanceHandler {
	return &InstanceHandler{loans: loans}
}

func (h *InstanceHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.loans.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SetStatus 变更副本状态
// @Summary      变更副本状态
// @Description  需要catalog.add_bookinstance；仅有catalog.can_mark_returned时只能把借出/预约改为available
// @Tags         副本
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "副本ID(UUID)"
// @Param        request body dto.SetStatusRequest  true "目标状态"
// @Success      200 {object} response.Response{data=apploan.InstanceItem}
// @Failure      200 {object} response.Response "40001 状态冲突 / 40002 非法流转 / 40013 缺少借阅人"
// @Router       /api/v1/instances/{id}/status [put]
func (h *InstanceHandler) SetStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.loans.SetStatus(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Status, req.BorrowerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Checkout 借出
func (h *InstanceHandler) Checkout(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.BorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.loans.Checkout(c.Request.Context(), middleware.CurrentIdentity(c), id, req.BorrowerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Reserve 预约
func (h *InstanceHandler) Reserve(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.BorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.loans.Reserve(c.Request.Context(), middleware.CurrentIdentity(c), id, req.BorrowerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Return 归还
func (h *InstanceHandler) Return(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.loans.Return(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *InstanceHandler) UpdateImprint(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ImprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	result, err := h.loans.UpdateImprint(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Imprint)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *InstanceHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.loans.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MyLoans 当前用户借出中的副本
// @Summary      我的借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apploan.InstanceItem}
// @Router       /api/v1/loans/mine [get]
func (h *InstanceHandler) MyLoans(c *gin.Context) {
	result, err := h.loans.MyLoans(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AllLoans 全部借出/预约中的副本，需要catalog.can_mark_returned
func (h *InstanceHandler) AllLoans(c *gin.Context) {
	result, err := h.loans.AllLoans(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/library-catalog/internal/application/catalog"
	"github.com/xiebiao/library-catalog/internal/interface/http/middleware"
	"github.com/xiebiao/library-catalog/pkg/response"
)

// SummaryHandler 首页统计
type SummaryHandler struct {
	summary *appcatalog.SummaryUseCase
}

func NewSummaryHandler(summary *appcatalog.SummaryUseCase) *SummaryHandler {
	return &SummaryHandler{summary: summary}
}

// Index 首页统计
// @Summary      首页统计
// @Description  图书、副本、可借副本、作者、类型数量，以及当前会话的访问次数
// @Tags         首页
// @Produce      json
// @Success      200 {object} response.Response{data=appcatalog.SummaryResponse}
// @Router       /api/v1/ [get]
func (h *SummaryHandler) Index(c *gin.Context) {
	result, err := h.summary.Execute(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

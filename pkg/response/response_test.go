package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

func perform(t *testing.T, fn gin.HandlerFunc) Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	resp := perform(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) })
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
}

func TestError_HidesInternalCause(t *testing.T) {
	resp := perform(t, func(c *gin.Context) {
		Error(c, apperrors.Wrap(errors.New("dial tcp: refused"), "查询图书失败"))
	})
	assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
	assert.Equal(t, "查询图书失败", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestError_BusinessCode(t *testing.T) {
	resp := perform(t, func(c *gin.Context) { Error(c, apperrors.ErrForbidden) })
	assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
}

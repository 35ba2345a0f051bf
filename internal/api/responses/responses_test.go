package responses

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/statements", nil)
	return c, w
}

func TestSuccess_WithoutExplicitInit(t *testing.T) {
	logger = nil
	c, w := testContext(t)

	assert.NotPanics(t, func() { Success(c, gin.H{"ok": true}, "done") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestError_WithoutExplicitInit(t *testing.T) {
	logger = nil
	c, w := testContext(t)

	assert.NotPanics(t, func() { Error(c, http.StatusBadRequest, "bad input", "field missing") })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
	assert.Contains(t, w.Body.String(), "field missing")
}

package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func record(write func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)
	return w
}

func TestOK(t *testing.T) {
	w := record(func(c *gin.Context) { OK(c, gin.H{"hello": "world"}) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"code":200,"data":{"hello":"world"}}`, w.Body.String())
}

func TestOKWithToken(t *testing.T) {
	w := record(func(c *gin.Context) { OKWithToken(c, gin.H{"id": 1}, "tok-123") })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"data":{"id":1},"token":"tok-123"}`, w.Body.String())
}

func TestFailKeepsHTTPStatus200(t *testing.T) {
	w := record(func(c *gin.Context) { Fail(c, "user not found") })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":400,"error":"user not found"}`, w.Body.String())
}

func TestFailWithDetails(t *testing.T) {
	w := record(func(c *gin.Context) { Fail(c, map[string]string{"email": "is required"}) })

	assert.JSONEq(t, `{"code":400,"error":{"email":"is required"}}`, w.Body.String())
}

func TestFailMessage(t *testing.T) {
	w := record(func(c *gin.Context) { FailMessage(c, "acme iconset existed") })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":400,"message":"acme iconset existed"}`, w.Body.String())
}

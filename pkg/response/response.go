package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response wrapper used by every endpoint.
// Code 200 signals success, 400 any validation or business failure; the
// HTTP status stays 200 either way so clients dispatch on Code alone.
type Envelope struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

func send(c *gin.Context, env Envelope) {
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, env)
}

// OK writes a success envelope with optional data.
func OK(c *gin.Context, data any) {
	send(c, Envelope{Code: http.StatusOK, Data: data})
}

// OKWithToken writes a success envelope carrying a signed token, used by
// register and login.
func OKWithToken(c *gin.Context, data any, token string) {
	send(c, Envelope{Code: http.StatusOK, Data: data, Token: token})
}

// Fail writes a business/validation failure. err may be a string or a
// structured details object.
func Fail(c *gin.Context, err any) {
	send(c, Envelope{Code: http.StatusBadRequest, Error: err})
}

// FailMessage writes a failure using the message field instead of error,
// matching the prefix-collision response shape.
func FailMessage(c *gin.Context, msg string) {
	send(c, Envelope{Code: http.StatusBadRequest, Message: msg})
}

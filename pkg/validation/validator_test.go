package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"pwd" binding:"required,pwd"`
}

type projectPayload struct {
	Prefix string `json:"prefix" binding:"required,prefix"`
	Name   string `json:"name" binding:"required"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestInitUsesJSONFieldNames(t *testing.T) {
	v := engine(t)

	err := v.Struct(registerPayload{Email: "not-an-email", Name: "x", Password: "long-enough"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
}

func TestPasswordAlias(t *testing.T) {
	v := engine(t)

	err := v.Struct(registerPayload{Email: "a@b.co", Name: "x", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, "min length 8", ToDetails(err)["pwd"])

	assert.NoError(t, v.Struct(registerPayload{Email: "a@b.co", Name: "x", Password: "long-enough"}))
}

func TestPrefixAlias(t *testing.T) {
	v := engine(t)

	for _, bad := range []string{"a", "with/slash", "with.dot"} {
		err := v.Struct(projectPayload{Prefix: bad, Name: "x"})
		assert.Error(t, err, "prefix %q should be rejected", bad)
	}
	assert.NoError(t, v.Struct(projectPayload{Prefix: "acme-icons", Name: "x"}))
}

func TestToDetailsNonValidationError(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}

package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 500))
	assert.Equal(t, 500, Clamp(10000, 1, 500))
	assert.Equal(t, 42, Clamp(42, 1, 500))
	assert.Equal(t, 0, ClampOffset(-5))
	assert.Equal(t, 7, ClampOffset(7))
}

func TestGetLimitParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for query, want := range map[string]int{
		"":            12,
		"?limit=abc":  12,
		"?limit=0":    1,
		"?limit=5":    5,
		"?limit=9999": 50,
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/products/p1/similar"+query, nil)
		assert.Equal(t, want, GetLimitParam(c, 12, 50), query)
	}
}

func TestRedactBody(t *testing.T) {
	out := RedactBody([]byte(`{"email":"a@b.c","password":"hunter2","nested":{"accessToken":"t"},"list":[{"secret":"s"}]}`))
	m := out.(map[string]interface{})
	assert.Equal(t, "a@b.c", m["email"])
	assert.Equal(t, "[REDACTED]", m["password"])
	assert.Equal(t, "[REDACTED]", m["nested"].(map[string]interface{})["accessToken"])
	assert.Equal(t, "[REDACTED]", m["list"].([]interface{})[0].(map[string]interface{})["secret"])

	assert.Nil(t, RedactBody(nil))
	assert.Equal(t, "[non-JSON body omitted]", RedactBody([]byte("plain text")))
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer x")
	h.Set(HeaderInternalSignature, "abc")
	h.Set("Content-Type", "application/json")

	out := RedactHeaders(h)
	assert.Equal(t, "[REDACTED]", out["Authorization"])
	assert.Equal(t, "[REDACTED]", out[HeaderInternalSignature])
	assert.Equal(t, "application/json", out["Content-Type"])
}

func TestErrorResponseCarriesCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(CorrelationIDKey, "corr-1")

	NotFoundResponse(c, "Product")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":false,"code":"NOT_FOUND","message":"Product not found","correlation_id":"corr-1"}`, w.Body.String())
	assert.True(t, c.IsAborted())
}

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Query string `json:"query" validate:"trimmed_required"`
}

func TestGetValidationErrorsUsesJSONNames(t *testing.T) {
	err := ValidateStruct(sampleRequest{Email: "nope", Query: "   "})
	details := GetValidationErrors(err)

	assert.Len(t, details, 2)
	assert.Equal(t, "email", details[0].Field)
	assert.Equal(t, "email", details[0].Tag)
	assert.Equal(t, "query", details[1].Field)
	assert.Equal(t, "query is required", details[1].Message)
}

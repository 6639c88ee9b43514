package httpjson

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Toast(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadGateway, "Failed to save evaluation results")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"Error","description":"Failed to save evaluation results"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "bad")
	assert.Contains(t, rec.Body.String(), "Validation Error")
}

func TestDecode(t *testing.T) {
	type body struct {
		PH float64 `json:"ph"`
	}
	var b body
	require.NoError(t, Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ph":6.5}`)), &b))
	assert.Equal(t, 6.5, b.PH)

	assert.ErrorContains(t, Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &b), "empty")
	assert.Error(t, Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ph":"x"}`)), &b))
	assert.Error(t, Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"pH2":1}`)), &b))
	assert.Error(t, Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ph":1}{"ph":2}`)), &b))
}

func TestIntParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=900&minutes=abc&n=-4", nil)
	assert.Equal(t, 500, IntParam(r, "limit", 20, 1, 500))
	assert.Equal(t, 1440, IntParam(r, "minutes", 1440, 1, 0))
	assert.Equal(t, 1, IntParam(r, "n", 10, 1, 100))
	assert.Equal(t, 10, IntParam(r, "missing", 10, 1, 100))
}

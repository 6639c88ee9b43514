package evaluation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/speech"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

// newMux leaves speech disabled when sp is nil.
func newMux(s store.Store, sp *recordingSpeaker) *http.ServeMux {
	var speaker speech.Speaker
	if sp != nil {
		speaker = sp
	}
	mux := http.NewServeMux()
	Register(mux, NewPipeline(s, speaker, nil, zap.NewNop().Sugar()))
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Classify(t *testing.T) {
	mux := newMux(memoryStore(t), nil)

	rec := do(t, mux, http.MethodPost, "/evaluations/classify", `{"moisture":72,"ph":5.5,"nitrogen":130}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got classifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Findings, 3)
	assert.Equal(t, entities.StatusCritical, got.Findings[0].Status)
	assert.Equal(t, entities.StatusCritical, got.Worst)
	assert.Equal(t, 1, got.Summary[entities.StatusWarning])

	rec = do(t, mux, http.MethodPost, "/evaluations/classify", `{"moisture":72,"ph":15,"nitrogen":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation Error")

	rec = do(t, mux, http.MethodPost, "/evaluations/classify", `{"moisture":72,"potash":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_SaveAndList(t *testing.T) {
	mux := newMux(memoryStore(t), nil)
	body := `{"email":"farmer@gmail.com","soil_data":{"moisture":72,"ph":6.8,"nitrogen":85}}`

	rec := do(t, mux, http.MethodPost, "/evaluations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved saveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "Success!", saved.Title)
	assert.NotEmpty(t, saved.ID)

	rec = do(t, mux, http.MethodGet, "/evaluations?email=farmer@gmail.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []entities.EvaluationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, saved.ID, recs[0].ID)
	assert.Len(t, recs[0].Findings, 3)

	rec = do(t, mux, http.MethodGet, "/evaluations", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_SaveToasts(t *testing.T) {
	rec := do(t, newMux(memoryStore(t), nil), http.MethodPost, "/evaluations",
		`{"email":"farmer@yahoo.com","soil_data":{"moisture":72,"ph":6.8,"nitrogen":85}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var toast httpjson.Toast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toast))
	assert.Equal(t, httpjson.Toast{Title: "Invalid Email", Description: "Please enter a valid Gmail address"}, toast)

	rec = do(t, newMux(&failingStore{}, nil), http.MethodPost, "/evaluations",
		`{"email":"farmer@gmail.com","soil_data":{"moisture":72,"ph":6.8,"nitrogen":85}}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toast))
	assert.Equal(t, httpjson.Toast{Title: "Error", Description: FailedMessage}, toast)
}

func TestAPI_Speak(t *testing.T) {
	sp := &recordingSpeaker{}
	mux := newMux(memoryStore(t), sp)

	rec := do(t, mux, http.MethodPost, "/evaluations/speak", `{"soil_data":{"moisture":72,"ph":6.8,"nitrogen":85},"lang":"hi"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"speaking":true,"lang":"hi"}`, rec.Body.String())
	assert.Equal(t, "hi-IN", sp.last().Lang)

	rec = do(t, mux, http.MethodPost, "/evaluations/speak", `{"soil_data":{"moisture":72,"ph":6.8,"nitrogen":85},"category":"nitrogen"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, strings.HasPrefix(sp.last().Text, "Nitrogen Level: Nitrogen level is adequate."))

	rec = do(t, mux, http.MethodPost, "/evaluations/speak", `{"soil_data":{"moisture":72,"ph":6.8,"nitrogen":85},"category":"salinity"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodGet, "/evaluations/speak", "")
	assert.JSONEq(t, `{"speaking":true}`, rec.Body.String())

	rec = do(t, mux, http.MethodPost, "/evaluations/speak/stop", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, sp.stopped)

	rec = do(t, newMux(memoryStore(t), nil), http.MethodPost, "/evaluations/speak", `{"soil_data":{"moisture":72,"ph":6.8,"nitrogen":85}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

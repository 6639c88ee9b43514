package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishimitra/krishi_mitra/pkg/mqttbus/mqttbustest"
)

func get(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandler_Statuses(t *testing.T) {
	ok := Ping("store", func(context.Context) error { return nil })
	bad := Ping("influx", func(context.Context) error { return errors.New("unreachable") })

	_, body := get(t, Handler(ok))
	assert.Equal(t, "ok", body["status"])

	rec, body := get(t, Handler(ok, bad))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unreachable", body["checks"].(map[string]any)["influx"])

	_, body = get(t, Handler(bad))
	assert.Equal(t, "down", body["status"])
}

func TestReadyHandler(t *testing.T) {
	client := mqttbustest.NewClient()
	rec, body := get(t, ReadyHandler(MQTT(client)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ready"])

	client.Disconnect(0)
	rec, body = get(t, ReadyHandler(MQTT(client)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, body["ready"])

	rec, _ = get(t, ReadyHandler(MQTT(nil)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecentErrors(t *testing.T) {
	age := time.Second
	c := RecentErrors("influx", func() time.Duration { return age }, 30*time.Second)
	assert.Error(t, c.Probe(context.Background()))
	age = time.Minute
	assert.NoError(t, c.Probe(context.Background()))
}

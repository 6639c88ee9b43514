// Package health serves /healthz and /readyz from a list of dependency probes.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
)

// Check is one named dependency probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type report struct {
	Status string            `json:"status"` // ok | degraded | down
	Checks map[string]string `json:"checks"`
}

func run(ctx context.Context, checks []Check) (report, bool) {
	rep := report{Checks: make(map[string]string, len(checks))}
	failed := 0
	for _, c := range checks {
		if err := c.Probe(ctx); err != nil {
			rep.Checks[c.Name] = err.Error()
			failed++
			continue
		}
		rep.Checks[c.Name] = "ok"
	}
	switch {
	case failed == 0:
		rep.Status = "ok"
	case failed < len(checks):
		rep.Status = "degraded"
	default:
		rep.Status = "down"
	}
	return rep, failed == 0
}

// Handler always answers 200 with the status of every check.
func Handler(checks ...Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		rep, _ := run(ctx, checks)
		httpjson.Write(w, http.StatusOK, rep)
	})
}

// ReadyHandler answers 503 unless every check passes.
func ReadyHandler(checks ...Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		_, ok := run(ctx, checks)
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		httpjson.Write(w, status, struct {
			Ready bool `json:"ready"`
		}{ok})
	})
}

func MQTT(client mqtt.Client) Check {
	return Check{Name: "mqtt", Probe: func(context.Context) error {
		if client == nil || !client.IsConnectionOpen() {
			return errors.New("not connected")
		}
		return nil
	}}
}

// RecentErrors fails while the last error is younger than min.
func RecentErrors(name string, age func() time.Duration, min time.Duration) Check {
	return Check{Name: name, Probe: func(context.Context) error {
		if a := age(); a < min {
			return fmt.Errorf("write error %s ago", a.Truncate(time.Second))
		}
		return nil
	}}
}

func Ping(name string, ping func(ctx context.Context) error) Check {
	return Check{Name: name, Probe: ping}
}

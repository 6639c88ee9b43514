package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type RESTConfig struct {
	URL     string        `yaml:"url"`
	Key     string        `yaml:"key"`
	Timeout time.Duration `yaml:"timeout"`
	// Consecutive failures before the breaker opens, and how long it stays open.
	FailureThreshold uint32        `yaml:"failure_threshold"`
	OpenFor          time.Duration `yaml:"open_for"`
}

// StatusError is a non-2xx answer from the hosted backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store: backend status %d: %s", e.Code, e.Message)
}

// RESTStore talks to a hosted PostgREST API (the Supabase data endpoint).
// Every call goes through a circuit breaker; nothing is retried.
type RESTStore struct {
	base    string
	key     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
}

var _ Store = (*RESTStore)(nil)

func NewRESTStore(cfg RESTConfig, log *zap.SugaredLogger) *RESTStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 10 * time.Second
	}
	threshold := cfg.FailureThreshold
	st := gobreaker.Settings{
		Name:    "supabase",
		Timeout: cfg.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		// Rejected requests say nothing about the backend's health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || (errors.As(err, &se) && se.Code < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("store: breaker %s %s -> %s", name, from, to)
		},
	}
	return &RESTStore{
		base:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/") + "/rest/v1/",
		key:     cfg.Key,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(st),
		now:     time.Now,
	}
}

func (s *RESTStore) Insert(ctx context.Context, table Table, row Row) (string, error) {
	if !table.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	r := prepare(row, s.now())
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("store: marshal %s row: %w", table, err)
	}
	var created []Row
	if err := s.do(ctx, http.MethodPost, string(table), nil, body, &created); err != nil {
		return "", fmt.Errorf("store: insert into %s: %w", table, err)
	}
	if len(created) > 0 {
		if id, ok := created[0]["id"].(string); ok && id != "" {
			return id, nil
		}
	}
	return r["id"].(string), nil
}

func (s *RESTStore) Select(ctx context.Context, q Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var rows []Row
	if err := s.do(ctx, http.MethodGet, string(q.Table), selectParams(q), nil, &rows); err != nil {
		return nil, fmt.Errorf("store: select from %s: %w", q.Table, err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// selectParams renders q in PostgREST syntax: col=eq.v&order=col.desc&limit=n.
func selectParams(q Query) url.Values {
	v := url.Values{}
	v.Set("select", "*")
	for _, f := range q.Filters {
		v.Add(f.Column, "eq."+formatValue(f.Value))
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		v.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func (s *RESTStore) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		u := s.base + path
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", s.key)
		req.Header.Set("Authorization", "Bearer "+s.key)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Prefer", "return=representation")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.Body)}
		}
		if out == nil {
			return nil, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	return err
}

// errorMessage extracts PostgREST's {"message": ...} or falls back to the raw body.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var pe struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &pe) == nil && pe.Message != "" {
		return pe.Message
	}
	return strings.TrimSpace(string(b))
}

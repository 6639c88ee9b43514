package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

const (
	measurementReading = "soil_reading"
	measurementFinding = "soil_finding"
)

// Querier is the part of api.QueryAPI the mirror reads with.
type Querier interface {
	Query(ctx context.Context, query string) (*api.QueryTableResult, error)
}

// Mirror copies soil readings and findings into InfluxDB for trend charts.
// Writes are asynchronous; the time of the last failed batch is kept for readiness.
type Mirror struct {
	w      api.WriteAPI
	q      Querier
	bucket string
	log    *zap.SugaredLogger

	mu      sync.RWMutex
	lastErr time.Time
	done    chan struct{}
}

func NewMirror(w api.WriteAPI, q Querier, bucket string, log *zap.SugaredLogger) *Mirror {
	m := &Mirror{
		w:       w,
		q:       q,
		bucket:  bucket,
		log:     log,
		lastErr: time.Now().Add(-24 * time.Hour),
		done:    make(chan struct{}),
	}
	go m.watchErrors()
	return m
}

// watchErrors ends when the write API is closed.
func (m *Mirror) watchErrors() {
	defer close(m.done)
	for err := range m.w.Errors() {
		if err == nil {
			continue
		}
		m.mu.Lock()
		m.lastErr = time.Now()
		m.mu.Unlock()
		m.log.Errorf("store: influx write error: %v", err)
	}
}

// Done is closed once the write API's error channel has been closed.
func (m *Mirror) Done() <-chan struct{} { return m.done }

// LastErrorAge is how long ago the last write failed.
func (m *Mirror) LastErrorAge() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.lastErr)
}

func (m *Mirror) RecordSample(fieldID, sensorID string, s entities.SoilSample, at time.Time) {
	p := write.NewPoint(measurementReading,
		map[string]string{"field_id": fieldID, "sensor_id": sensorID},
		map[string]interface{}{"moisture": s.Moisture, "ph": s.PH, "nitrogen": s.Nitrogen},
		at.UTC())
	m.w.WritePoint(p)
}

func (m *Mirror) RecordFindings(fieldID, sensorID string, findings []entities.Finding, at time.Time) {
	for _, f := range findings {
		p := write.NewPoint(measurementFinding,
			map[string]string{
				"field_id":  fieldID,
				"sensor_id": sensorID,
				"category":  string(f.Category),
				"status":    string(f.Status),
			},
			map[string]interface{}{"severity": f.Status.Severity()},
			at.UTC())
		m.w.WritePoint(p)
	}
}

// TrendPoint is one reading on the crop monitoring chart. Only recorded
// values are returned; there is no projected yield.
type TrendPoint struct {
	Time     time.Time `json:"time"`
	Moisture float64   `json:"moisture"`
	PH       float64   `json:"ph"`
	Nitrogen float64   `json:"nitrogen"`
}

// Trend returns readings for fieldID over the last window, oldest first.
// An empty fieldID covers every field.
func (m *Mirror) Trend(ctx context.Context, fieldID string, window time.Duration, limit int) ([]TrendPoint, error) {
	if m.q == nil {
		return nil, fmt.Errorf("store: trend query not configured")
	}
	res, err := m.q.Query(ctx, buildTrendFlux(m.bucket, fieldID, int(window.Minutes()), limit))
	if err != nil {
		return nil, fmt.Errorf("store: trend query: %w", err)
	}
	defer res.Close()

	out := make([]TrendPoint, 0, limit)
	for res.Next() {
		rec := res.Record()
		out = append(out, TrendPoint{
			Time:     rec.Time().UTC(),
			Moisture: toFloat(rec.ValueByKey("moisture")),
			PH:       toFloat(rec.ValueByKey("ph")),
			Nitrogen: toFloat(rec.ValueByKey("nitrogen")),
		})
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("store: trend iterate: %w", err)
	}
	return out, nil
}

func buildTrendFlux(bucket, fieldID string, minutes, limit int) string {
	if minutes < 1 {
		minutes = 1
	}
	if limit < 1 {
		limit = 1
	}
	filter := ""
	if fieldID != "" {
		filter = fmt.Sprintf("\n  |> filter(fn: (r) => r.field_id == %q)", fieldID)
	}
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == %q)%s
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> keep(columns: ["_time", "moisture", "ph", "nitrogen"])
  |> sort(columns: ["_time"])
  |> tail(n: %d)
`, bucket, minutes, measurementReading, filter, limit)
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	}
	return 0
}

// mirrored forwards inserts to a Store and mirrors soil rows to InfluxDB.
type mirrored struct {
	Store
	m *Mirror
}

// Wrap returns s with soil_data and evaluation_results inserts mirrored.
// Mirroring never fails the insert.
func (m *Mirror) Wrap(s Store) Store {
	return &mirrored{Store: s, m: m}
}

func (s *mirrored) Insert(ctx context.Context, table Table, row Row) (string, error) {
	id, err := s.Store.Insert(ctx, table, row)
	if err != nil {
		return id, err
	}
	switch table {
	case SoilData:
		var r entities.SoilRecord
		if Decode(row, &r) == nil {
			s.m.RecordSample("dashboard", r.FarmerID, r.Sample(), timeOrNow(r.CreatedAt))
		}
	case EvaluationResults:
		var r entities.EvaluationRecord
		if Decode(row, &r) == nil {
			s.m.RecordFindings("dashboard", "evaluation", r.Findings, timeOrNow(r.CreatedAt))
		}
	}
	return id, nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

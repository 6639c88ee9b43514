// Package records serves the farm dashboard: soil input, crops, pest alerts,
// contact queries, the chat assistant and the downloadable reports.
package records

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

// Evaluator classifies a soil sample. *evaluation.Pipeline implements it.
type Evaluator interface {
	Evaluate(s entities.SoilSample) ([]entities.Finding, error)
}

// TrendSource reads recorded soil readings. *store.Mirror implements it.
type TrendSource interface {
	Trend(ctx context.Context, fieldID string, window time.Duration, limit int) ([]store.TrendPoint, error)
}

type Service struct {
	store store.Store
	eval  Evaluator
	trend TrendSource
	log   *zap.SugaredLogger
	now   func() time.Time
}

// New wires the service. trend may be nil when no time-series backend is configured.
func New(s store.Store, eval Evaluator, trend TrendSource, log *zap.SugaredLogger) *Service {
	return &Service{store: s, eval: eval, trend: trend, log: log, now: time.Now}
}

func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /soil", s.createSoil)
	mux.HandleFunc("GET /soil", s.listSoil)

	mux.HandleFunc("POST /crops", s.createCrop)
	mux.HandleFunc("GET /crops", s.listCrops)
	mux.HandleFunc("GET /crops/trend", s.cropTrend)
	mux.HandleFunc("POST /pests", s.createPest)
	mux.HandleFunc("GET /pests", s.listPests)

	mux.HandleFunc("POST /contact", s.createContact)
	mux.HandleFunc("GET /contact", s.listContact)
	mux.HandleFunc("GET /contact/helplines", s.helplines)

	mux.HandleFunc("POST /chat/sessions", s.createSession)
	mux.HandleFunc("GET /chat/sessions", s.listSessions)
	mux.HandleFunc("POST /chat/sessions/{id}/messages", s.sendMessage)
	mux.HandleFunc("GET /chat/sessions/{id}/messages", s.listMessages)

	mux.HandleFunc("GET /reports/summary", s.summary)
	mux.HandleFunc("GET /reports/farm.txt", s.farmReport)
	mux.HandleFunc("GET /reports/{name}", s.csvReport)
}

// fail maps validation errors to 400 and everything else to 502.
func (s *Service) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, entities.ErrInvalidRecord) || errors.Is(err, entities.ErrInvalidSample) {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Errorf("records: %s: %v", op, err)
	httpjson.Error(w, http.StatusBadGateway, err.Error())
}

// insert stores rec in table and returns it re-read with its id and timestamps.
func insert[T any](ctx context.Context, st store.Store, table store.Table, rec T) (T, error) {
	var zero T
	id, err := store.InsertRecord(ctx, st, table, rec)
	if err != nil {
		return zero, err
	}
	got, err := store.SelectRecords[T](ctx, st, store.Query{Table: table}.Where("id", id))
	if err != nil {
		return zero, err
	}
	if len(got) == 0 {
		return zero, errors.New("records: inserted row not found")
	}
	return got[0], nil
}

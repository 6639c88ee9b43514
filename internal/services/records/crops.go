package records

import (
	"net/http"
	"strings"
	"time"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

func (s *Service) createCrop(w http.ResponseWriter, r *http.Request) {
	var c entities.CropRecord
	if err := httpjson.Decode(r, &c); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Validate(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID, c.CreatedAt = "", s.now().UTC()
	saved, err := insert(r.Context(), s.store, store.CropData, c)
	if err != nil {
		s.fail(w, "insert crop", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, saved)
}

func (s *Service) listCrops(w http.ResponseWriter, r *http.Request) {
	crops, err := store.SelectRecords[entities.CropRecord](r.Context(), s.store,
		store.Query{Table: store.CropData}.Newest(httpjson.IntParam(r, "limit", 50, 1, 500)))
	if err != nil {
		s.fail(w, "list crops", err)
		return
	}
	httpjson.Write(w, http.StatusOK, crops)
}

// GET /crops/trend?field=&minutes=1440&limit=30
// Only recorded readings are returned.
func (s *Service) cropTrend(w http.ResponseWriter, r *http.Request) {
	if s.trend == nil {
		httpjson.Error(w, http.StatusServiceUnavailable, "trend data is not configured")
		return
	}
	minutes := httpjson.IntParam(r, "minutes", 24*60, 1, 90*24*60)
	points, err := s.trend.Trend(r.Context(), r.URL.Query().Get("field"),
		time.Duration(minutes)*time.Minute, httpjson.IntParam(r, "limit", 30, 1, 500))
	if err != nil {
		s.fail(w, "trend", err)
		return
	}
	httpjson.Write(w, http.StatusOK, points)
}

// POST /pests; status defaults to active.
func (s *Service) createPest(w http.ResponseWriter, r *http.Request) {
	var p entities.PestAlert
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Status == "" {
		p.Status = entities.AlertActive
	}
	if err := p.Validate(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID, p.CreatedAt = "", s.now().UTC()
	saved, err := insert(r.Context(), s.store, store.PestAlerts, p)
	if err != nil {
		s.fail(w, "insert pest alert", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, saved)
}

// GET /pests?status=active
func (s *Service) listPests(w http.ResponseWriter, r *http.Request) {
	q := store.Query{Table: store.PestAlerts}
	if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
		status := entities.AlertStatus(st)
		if !status.Valid() {
			httpjson.Error(w, http.StatusBadRequest, "unknown alert status "+st)
			return
		}
		q = q.Where("status", status)
	}
	alerts, err := store.SelectRecords[entities.PestAlert](r.Context(), s.store, q.Newest(httpjson.IntParam(r, "limit", 50, 1, 500)))
	if err != nil {
		s.fail(w, "list pests", err)
		return
	}
	httpjson.Write(w, http.StatusOK, alerts)
}

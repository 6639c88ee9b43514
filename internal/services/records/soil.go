package records

import (
	"net/http"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

// soilResponse carries what the results page needs next.
type soilResponse struct {
	Record   entities.SoilRecord `json:"record"`
	Sample   entities.SoilSample `json:"sample"`
	Findings []entities.Finding  `json:"findings"`
}

// POST /soil
func (s *Service) createSoil(w http.ResponseWriter, r *http.Request) {
	var rec entities.SoilRecord
	if err := httpjson.Decode(r, &rec); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := rec.Validate(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	findings, err := s.eval.Evaluate(rec.Sample())
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rec.ID, rec.CreatedAt = "", s.now().UTC()
	saved, err := insert(r.Context(), s.store, store.SoilData, rec)
	if err != nil {
		s.fail(w, "insert soil", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, soilResponse{Record: saved, Sample: saved.Sample(), Findings: findings})
}

// GET /soil?farmer_id=&limit=
func (s *Service) listSoil(w http.ResponseWriter, r *http.Request) {
	q := store.Query{Table: store.SoilData}
	if id := r.URL.Query().Get("farmer_id"); id != "" {
		q = q.Where("farmer_id", id)
	}
	recs, err := store.SelectRecords[entities.SoilRecord](r.Context(), s.store, q.Newest(httpjson.IntParam(r, "limit", 50, 1, 500)))
	if err != nil {
		s.fail(w, "list soil", err)
		return
	}
	httpjson.Write(w, http.StatusOK, recs)
}

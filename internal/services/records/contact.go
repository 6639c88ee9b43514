package records

import (
	"net/http"
	"strings"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/i18n"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

type contactResponse struct {
	Query   entities.ContactQuery `json:"query"`
	Message string                `json:"message"`
}

type helplinesResponse struct {
	Title     string          `json:"title"`
	Lang      string          `json:"lang"`
	Helplines []i18n.Helpline `json:"helplines"`
}

// POST /contact?lang=hi
func (s *Service) createContact(w http.ResponseWriter, r *http.Request) {
	var q entities.ContactQuery
	if err := httpjson.Decode(r, &q); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	q.Phone = strings.TrimSpace(q.Phone)
	if err := q.Validate(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	q.ID, q.CreatedAt = "", s.now().UTC()
	saved, err := insert(r.Context(), s.store, store.ContactQueries, q)
	if err != nil {
		s.fail(w, "insert contact query", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, contactResponse{
		Query:   saved,
		Message: i18n.Text(i18n.KeySuccessMessage, r.URL.Query().Get("lang")),
	})
}

// GET /contact?phone=... lists a farmer's previous queries, newest first.
func (s *Service) listContact(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		httpjson.Error(w, http.StatusBadRequest, "phone is required")
		return
	}
	qs, err := store.SelectRecords[entities.ContactQuery](r.Context(), s.store,
		store.Query{Table: store.ContactQueries}.Where("phone", phone).Newest(httpjson.IntParam(r, "limit", 20, 1, 100)))
	if err != nil {
		s.fail(w, "list contact queries", err)
		return
	}
	httpjson.Write(w, http.StatusOK, qs)
}

func (s *Service) helplines(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("lang")
	httpjson.Write(w, http.StatusOK, helplinesResponse{
		Title:     i18n.Text(i18n.KeyHelplineTitle, code),
		Lang:      string(i18n.Resolve(code)),
		Helplines: i18n.Helplines(),
	})
}

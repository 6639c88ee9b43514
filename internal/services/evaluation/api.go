package evaluation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/krishimitra/krishi_mitra/internal/classifier"
	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/i18n"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

type classifyResponse struct {
	Sample   entities.SoilSample     `json:"sample"`
	Findings []entities.Finding      `json:"findings"`
	Worst    entities.Status         `json:"worst"`
	Summary  map[entities.Status]int `json:"summary"`
}

type saveRequest struct {
	Email  string              `json:"email"`
	Sample entities.SoilSample `json:"soil_data"`
}

type saveResponse struct {
	httpjson.Toast
	ID string `json:"id,omitempty"`
}

// speakRequest reads the whole evaluation, or one category when Category is set.
type speakRequest struct {
	Sample   entities.SoilSample `json:"soil_data"`
	Lang     string              `json:"lang"`
	Category entities.Category   `json:"category,omitempty"`
}

type speakResponse struct {
	Speaking bool   `json:"speaking"`
	Lang     string `json:"lang,omitempty"`
}

// Register mounts the evaluation routes on mux.
func Register(mux *http.ServeMux, p *Pipeline) {
	// POST /evaluations/classify  {moisture, ph, nitrogen}
	mux.HandleFunc("POST /evaluations/classify", func(w http.ResponseWriter, r *http.Request) {
		var s entities.SoilSample
		if err := httpjson.Decode(r, &s); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		findings, err := p.Evaluate(s)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpjson.Write(w, http.StatusOK, classifyResponse{
			Sample:   s,
			Findings: findings,
			Worst:    classifier.Worst(findings),
			Summary:  classifier.Summary(findings),
		})
	})

	// POST /evaluations  {email, soil_data}
	// Findings are derived from soil_data by Save; the client's copy is never trusted.
	mux.HandleFunc("POST /evaluations", func(w http.ResponseWriter, r *http.Request) {
		var req saveRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := p.Evaluate(req.Sample); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		res := p.Save(r.Context(), req.Email, req.Sample)
		status := http.StatusCreated
		switch {
		case errors.Is(res.Err, ErrInvalidEmail):
			status = http.StatusBadRequest
		case res.Err != nil:
			status = http.StatusBadGateway
		}
		httpjson.Write(w, status, saveResponse{Toast: res.Toast(), ID: res.ID})
	})

	// GET /evaluations?email=<addr>&limit=20
	mux.HandleFunc("GET /evaluations", func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			httpjson.Error(w, http.StatusBadRequest, "email is required")
			return
		}
		recs, err := p.History(r.Context(), email, httpjson.IntParam(r, "limit", 20, 1, 100))
		if err != nil {
			httpjson.Error(w, http.StatusBadGateway, err.Error())
			return
		}
		httpjson.Write(w, http.StatusOK, recs)
	})

	mux.HandleFunc("POST /evaluations/speak", func(w http.ResponseWriter, r *http.Request) {
		var req speakRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		findings, err := p.Evaluate(req.Sample)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var used i18n.Lang
		if req.Category != "" {
			f, ok := pick(findings, req.Category)
			if !ok {
				httpjson.Error(w, http.StatusBadRequest, "unknown category "+string(req.Category))
				return
			}
			used, err = p.SpeakFinding(r.Context(), f, req.Lang)
		} else {
			used, err = p.Speak(r.Context(), findings, req.Lang)
		}
		if err != nil {
			httpjson.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		httpjson.Write(w, http.StatusAccepted, speakResponse{Speaking: true, Lang: string(used)})
	})

	mux.HandleFunc("POST /evaluations/speak/stop", func(w http.ResponseWriter, _ *http.Request) {
		p.StopSpeaking()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /evaluations/speak", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, http.StatusOK, speakResponse{Speaking: p.Speaking()})
	})
}

func pick(findings []entities.Finding, c entities.Category) (entities.Finding, bool) {
	for _, f := range findings {
		if f.Category == c {
			return f, true
		}
	}
	return entities.Finding{}, false
}

package records

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishimitra/krishi_mitra/internal/i18n"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/services/evaluation"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

type fixture struct {
	svc *Service
	mux *http.ServeMux
	st  *store.SQLStore
}

func newFixture(t *testing.T, trend TrendSource) *fixture {
	t.Helper()
	st, err := store.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := zap.NewNop().Sugar()
	svc := New(st, evaluation.NewPipeline(st, nil, nil, log), trend, log)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	mux := http.NewServeMux()
	svc.Register(mux)
	return &fixture{svc: svc, mux: mux, st: st}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const soilBody = `{"farmer_id":"F-101","soil_moisture":45,"soil_ph":6.5,"nitrogen":80,"phosphorus":20,"potassium":30,"weather_condition":"Sunny","notes":"north plot"}`

func TestSoil_CreateReturnsFindings(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/soil", soilBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody[soilResponse](t, rec)
	assert.NotEmpty(t, got.Record.ID)
	assert.Equal(t, entities.SoilSample{Moisture: 45, PH: 6.5, Nitrogen: 80, Notes: "north plot"}, got.Sample)
	require.Len(t, got.Findings, 3)
	assert.Equal(t, entities.StatusCritical, got.Findings[1].Status)

	rec = f.do(t, http.MethodGet, "/soil?farmer_id=F-101", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]entities.SoilRecord](t, rec), 1)
}

func TestSoil_Validation(t *testing.T) {
	f := newFixture(t, nil)
	for _, body := range []string{
		`{"soil_moisture":45,"soil_ph":6.5,"nitrogen":80,"weather_condition":"Sunny"}`,
		`{"farmer_id":"F","soil_moisture":145,"soil_ph":6.5,"nitrogen":80,"weather_condition":"Sunny"}`,
		`{"farmer_id":"F","soil_moisture":45,"soil_ph":6.5,"nitrogen":80,"weather_condition":"Snowy"}`,
		``,
	} {
		rec := f.do(t, http.MethodPost, "/soil", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCropsAndPests(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/crops", `{"crop_type":"Rice","growth_stage":"Tillering","yield_potential":80,"field_location":"North, plot 2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	crop := decodeBody[entities.CropRecord](t, rec)
	assert.Equal(t, "Rice", crop.CropType)
	assert.Equal(t, f.svc.now(), crop.CreatedAt)

	rec = f.do(t, http.MethodPost, "/crops", `{"crop_type":"Rice","growth_stage":"","yield_potential":80}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/crops", "")
	assert.Len(t, decodeBody[[]entities.CropRecord](t, rec), 1)

	rec = f.do(t, http.MethodPost, "/pests", `{"alert_type":"Aphids","field":"North","severity":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, entities.AlertActive, decodeBody[entities.PestAlert](t, rec).Status)

	rec = f.do(t, http.MethodPost, "/pests", `{"alert_type":"Locust","field":"East","severity":"low","status":"resolved"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/pests?status=active", "")
	active := decodeBody[[]entities.PestAlert](t, rec)
	require.Len(t, active, 1)
	assert.Equal(t, "Aphids", active[0].AlertType)

	rec = f.do(t, http.MethodGet, "/pests", "")
	assert.Len(t, decodeBody[[]entities.PestAlert](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/pests?status=gone", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/contact?lang=hi", `{"name":"Ravi","phone":"9876543210","query_type":"Soil Health","message":"Leaves turning yellow"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody[contactResponse](t, rec)
	assert.Equal(t, i18n.Text(i18n.KeySuccessMessage, "hi"), got.Message)
	assert.NotEmpty(t, got.Query.ID)

	rec = f.do(t, http.MethodPost, "/contact", `{"phone":"12345","query_type":"Other","message":"Hello there"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/contact?phone=9876543210", "")
	qs := decodeBody[[]entities.ContactQuery](t, rec)
	require.Len(t, qs, 1)
	assert.Equal(t, "Ravi", qs[0].Name)

	rec = f.do(t, http.MethodGet, "/contact", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/contact/helplines?lang=ta-IN", "")
	h := decodeBody[helplinesResponse](t, rec)
	assert.Equal(t, "ta", h.Lang)
	assert.Equal(t, i18n.Text(i18n.KeyHelplineTitle, "ta"), h.Title)
	assert.Equal(t, i18n.Helplines(), h.Helplines)
}

func TestChat(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/chat/sessions", `{"language":"hi-IN"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decodeBody[entities.ChatSession](t, rec)
	assert.Equal(t, SessionTitle, session.Title)
	assert.Equal(t, "hi", session.Language)

	rec = f.do(t, http.MethodPost, "/chat/sessions/"+session.ID+"/messages", `{"content":"my soil is dry"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ex := decodeBody[exchange](t, rec)
	assert.Equal(t, entities.RoleUser, ex.User.Role)
	assert.Equal(t, entities.MessageText, ex.User.MessageType)
	assert.Equal(t, i18n.Format(i18n.IntentSoil, "hi"), ex.Assistant.Content)

	rec = f.do(t, http.MethodGet, "/chat/sessions/"+session.ID+"/messages", "")
	msgs := decodeBody[[]entities.ChatMessage](t, rec)
	require.Len(t, msgs, 2)
	assert.Equal(t, entities.RoleUser, msgs[0].Role)
	assert.Equal(t, entities.RoleAssistant, msgs[1].Role)

	rec = f.do(t, http.MethodPost, "/chat/sessions/"+session.ID+"/messages", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPost, "/chat/sessions/"+session.ID+"/messages", `{"content":"hi","message_type":"video"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodGet, "/chat/sessions/missing/messages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat_MessagesKeepLatest(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/chat/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decodeBody[entities.ChatSession](t, rec)

	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, content := range []string{"hello", "my soil is dry", "pest on leaves"} {
		f.svc.now = func() time.Time { return start.Add(time.Duration(i) * time.Minute) }
		rec = f.do(t, http.MethodPost, "/chat/sessions/"+session.ID+"/messages", `{"content":"`+content+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/chat/sessions/"+session.ID+"/messages?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decodeBody[[]entities.ChatMessage](t, rec)
	require.Len(t, msgs, 3)
	assert.Equal(t, entities.RoleAssistant, msgs[0].Role)
	assert.Equal(t, "pest on leaves", msgs[1].Content)
	assert.Equal(t, entities.RoleUser, msgs[1].Role)
	assert.Equal(t, entities.RoleAssistant, msgs[2].Role)
	assert.True(t, msgs[0].CreatedAt.Before(msgs[1].CreatedAt))
}

func TestChat_SessionsNewestTen(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	f.svc.now = func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
	var last string
	for i := 0; i < 12; i++ {
		rec := f.do(t, http.MethodPost, "/chat/sessions", "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		last = decodeBody[entities.ChatSession](t, rec).ID
	}
	rec := f.do(t, http.MethodGet, "/chat/sessions", "")
	sessions := decodeBody[[]entities.ChatSession](t, rec)
	require.Len(t, sessions, 10)
	assert.Equal(t, last, sessions[0].ID)
	assert.Equal(t, "en", sessions[0].Language)
}

func seedReports(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, m := range []float64{45, 70, 72.5} {
		_, err := store.InsertRecord(ctx, f.st, store.SoilData, entities.SoilRecord{FarmerID: "F", SoilMoisture: m, SoilPH: 6.5, Nitrogen: 80, WeatherCondition: entities.WeatherSunny})
		require.NoError(t, err)
	}
	_, err := store.InsertRecord(ctx, f.st, store.CropData, entities.CropRecord{CropType: "Rice", GrowthStage: "Flowering", YieldPotential: 80, FieldLocation: "North, plot 2"})
	require.NoError(t, err)
	_, err = store.InsertRecord(ctx, f.st, store.CropData, entities.CropRecord{CropType: "Wheat", GrowthStage: "Seedling", YieldPotential: 65})
	require.NoError(t, err)
	_, err = store.InsertRecord(ctx, f.st, store.PestAlerts, entities.PestAlert{AlertType: "Aphids", Field: "North", Severity: entities.SeverityHigh, Status: entities.AlertActive})
	require.NoError(t, err)
	_, err = store.InsertRecord(ctx, f.st, store.PestAlerts, entities.PestAlert{AlertType: "Locust", Field: "East", Severity: entities.SeverityLow, Status: entities.AlertResolved})
	require.NoError(t, err)
}

func TestReports_Summary(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/reports/summary", "")
	assert.Equal(t, Summary{}, decodeBody[Summary](t, rec))

	seedReports(t, f)
	rec = f.do(t, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Summary{
		TotalSoilRecords: 3,
		TotalCrops:       2,
		TotalAlerts:      2,
		AverageMoisture:  62.5,
		AverageYield:     72.5,
		ActiveAlerts:     1,
	}, decodeBody[Summary](t, rec))
}

func TestSummarize_RoundsToOneDecimal(t *testing.T) {
	soil := []entities.SoilRecord{{SoilMoisture: 10}, {SoilMoisture: 10}, {SoilMoisture: 11}}
	assert.Equal(t, 10.3, Summarize(soil, nil, nil).AverageMoisture)
}

func TestReports_CSV(t *testing.T) {
	f := newFixture(t, nil)
	seedReports(t, f)

	rec := f.do(t, http.MethodGet, "/reports/crops.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `crop_data_2024-06-01.csv`)
	assert.Contains(t, rec.Body.String(), `"North, plot 2"`)

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, cropColumns, rows[0])

	rec = f.do(t, http.MethodGet, "/reports/all.csv", "")
	rows, err = csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+3+2+2)
	header := rows[0]
	assert.Equal(t, "data_type", header[len(header)-1])
	var types []string
	for _, r := range rows[1:] {
		types = append(types, r[len(r)-1])
	}
	assert.Equal(t, []string{"soil", "soil", "soil", "crop", "crop", "pest_alert", "pest_alert"}, types)

	rec = f.do(t, http.MethodGet, "/reports/weather.csv", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodGet, "/reports/soil.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReports_FarmText(t *testing.T) {
	f := newFixture(t, nil)
	seedReports(t, f)

	rec := f.do(t, http.MethodGet, "/reports/farm.txt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "KRISHI MITRA - FARM REPORT\nGenerated: 2024-06-01\n"))
	assert.Contains(t, body, "Average Moisture: 62.5%\n")
	assert.Contains(t, body, "Crop: Wheat, Stage: Seedling, Yield: 65%, Field: Unknown\n")
	assert.Contains(t, body, "Type: Aphids, Field: North, Severity: high, Status: active\n")
}

type fakeTrend struct {
	field  string
	window time.Duration
	limit  int
	err    error
}

func (f *fakeTrend) Trend(_ context.Context, fieldID string, window time.Duration, limit int) ([]store.TrendPoint, error) {
	f.field, f.window, f.limit = fieldID, window, limit
	if f.err != nil {
		return nil, f.err
	}
	return []store.TrendPoint{{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Moisture: 61, PH: 6.9, Nitrogen: 88}}, nil
}

func TestCropTrend(t *testing.T) {
	rec := newFixture(t, nil).do(t, http.MethodGet, "/crops/trend", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	tr := &fakeTrend{}
	f := newFixture(t, tr)
	rec = f.do(t, http.MethodGet, "/crops/trend?field=north&minutes=60&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	pts := decodeBody[[]store.TrendPoint](t, rec)
	require.Len(t, pts, 1)
	assert.Equal(t, 61.0, pts[0].Moisture)
	assert.Equal(t, "north", tr.field)
	assert.Equal(t, time.Hour, tr.window)
	assert.Equal(t, 5, tr.limit)

	tr.err = errors.New("influx down")
	rec = f.do(t, http.MethodGet, "/crops/trend", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, nil)
	seedReports(t, f)

	var b strings.Builder
	require.NoError(t, ExportCSV(context.Background(), f.st, &b, "pests"))
	rows, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, pestColumns, rows[0])

	assert.Error(t, ExportCSV(context.Background(), f.st, &b, "weather"))
}

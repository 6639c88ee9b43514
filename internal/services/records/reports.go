package records

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/krishimitra/krishi_mitra/internal/httpjson"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

var (
	soilColumns = []string{"id", "farmer_id", "soil_moisture", "soil_ph", "nitrogen", "phosphorus", "potassium",
		"weather_condition", "soil_image_url", "water_image_url", "notes", "created_at"}
	cropColumns = []string{"id", "crop_type", "growth_stage", "yield_potential", "field_location",
		"planting_date", "expected_harvest", "created_at"}
	pestColumns = []string{"id", "alert_type", "field", "severity", "description", "status", "reported_by", "created_at"}
)

// Reports maps each CSV report name to its download file prefix.
var Reports = map[string]string{
	"soil":  "soil_data",
	"crops": "crop_data",
	"pests": "pest_alerts",
	"all":   "farm_data",
}

// Summary is the statistics block of the reports page.
type Summary struct {
	TotalSoilRecords int     `json:"totalSoilRecords"`
	TotalCrops       int     `json:"totalCrops"`
	TotalAlerts      int     `json:"totalAlerts"`
	AverageMoisture  float64 `json:"averageMoisture"`
	AverageYield     float64 `json:"averageYield"`
	ActiveAlerts     int     `json:"activeAlerts"`
}

// farmData is every soil, crop and pest row, newest first.
type farmData struct {
	soil, crops, pests []store.Row
}

func fetchAll(ctx context.Context, st store.Store) (farmData, error) {
	var d farmData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.soil, err = st.Select(gctx, store.Query{Table: store.SoilData}.Newest(0))
		return err
	})
	g.Go(func() (err error) {
		d.crops, err = st.Select(gctx, store.Query{Table: store.CropData}.Newest(0))
		return err
	})
	g.Go(func() (err error) {
		d.pests, err = st.Select(gctx, store.Query{Table: store.PestAlerts}.Newest(0))
		return err
	})
	if err := g.Wait(); err != nil {
		return farmData{}, err
	}
	return d, nil
}

func (d farmData) records() ([]entities.SoilRecord, []entities.CropRecord, []entities.PestAlert, error) {
	soil, err := decodeAll[entities.SoilRecord](d.soil)
	if err != nil {
		return nil, nil, nil, err
	}
	crops, err := decodeAll[entities.CropRecord](d.crops)
	if err != nil {
		return nil, nil, nil, err
	}
	pests, err := decodeAll[entities.PestAlert](d.pests)
	if err != nil {
		return nil, nil, nil, err
	}
	return soil, crops, pests, nil
}

func decodeAll[T any](rows []store.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		var v T
		if err := store.Decode(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Summarize averages are rounded to one decimal; empty tables average 0.
func Summarize(soil []entities.SoilRecord, crops []entities.CropRecord, pests []entities.PestAlert) Summary {
	sum := Summary{TotalSoilRecords: len(soil), TotalCrops: len(crops), TotalAlerts: len(pests)}
	if len(soil) > 0 {
		var total float64
		for _, r := range soil {
			total += r.SoilMoisture
		}
		sum.AverageMoisture = round1(total / float64(len(soil)))
	}
	if len(crops) > 0 {
		var total float64
		for _, c := range crops {
			total += c.YieldPotential
		}
		sum.AverageYield = round1(total / float64(len(crops)))
	}
	for _, p := range pests {
		if p.Status == entities.AlertActive {
			sum.ActiveAlerts++
		}
	}
	return sum
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func (s *Service) summary(w http.ResponseWriter, r *http.Request) {
	d, err := fetchAll(r.Context(), s.store)
	if err != nil {
		s.fail(w, "fetch report data", err)
		return
	}
	soil, crops, pests, err := d.records()
	if err != nil {
		s.fail(w, "decode report data", err)
		return
	}
	httpjson.Write(w, http.StatusOK, Summarize(soil, crops, pests))
}

// GET /reports/{soil|crops|pests|all}.csv
func (s *Service) csvReport(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("name"), ".csv")
	if !ok {
		httpjson.Error(w, http.StatusNotFound, "unknown report "+r.PathValue("name"))
		return
	}
	prefix, ok := Reports[name]
	if !ok {
		httpjson.Error(w, http.StatusNotFound, "unknown report "+name+".csv")
		return
	}
	d, err := fetchAll(r.Context(), s.store)
	if err != nil {
		s.fail(w, "fetch report data", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", prefix+"_"+s.now().UTC().Format(time.DateOnly)+".csv"))
	if err := writeCSV(w, name, d); err != nil {
		s.log.Errorf("records: write %s.csv: %v", name, err)
	}
}

// ExportCSV writes the named report to w.
func ExportCSV(ctx context.Context, st store.Store, w io.Writer, name string) error {
	if _, ok := Reports[name]; !ok {
		return fmt.Errorf("records: unknown report %q", name)
	}
	d, err := fetchAll(ctx, st)
	if err != nil {
		return err
	}
	return writeCSV(w, name, d)
}

func writeCSV(w io.Writer, name string, d farmData) error {
	cw := csv.NewWriter(w)
	switch name {
	case "soil":
		writeTable(cw, soilColumns, d.soil, "")
	case "crops":
		writeTable(cw, cropColumns, d.crops, "")
	case "pests":
		writeTable(cw, pestColumns, d.pests, "")
	case "all":
		cols := union(soilColumns, cropColumns, pestColumns)
		_ = cw.Write(append(cols, "data_type"))
		writeRows(cw, cols, d.soil, "soil")
		writeRows(cw, cols, d.crops, "crop")
		writeRows(cw, cols, d.pests, "pest_alert")
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(cw *csv.Writer, cols []string, rows []store.Row, dataType string) {
	_ = cw.Write(cols)
	writeRows(cw, cols, rows, dataType)
}

// writeRows appends dataType as a last column when it is set.
func writeRows(cw *csv.Writer, cols []string, rows []store.Row, dataType string) {
	for _, row := range rows {
		rec := make([]string, 0, len(cols)+1)
		for _, c := range cols {
			rec = append(rec, cell(row[c]))
		}
		if dataType != "" {
			rec = append(rec, dataType)
		}
		_ = cw.Write(rec)
	}
}

func union(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, c := range l {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

// GET /reports/farm.txt
func (s *Service) farmReport(w http.ResponseWriter, r *http.Request) {
	d, err := fetchAll(r.Context(), s.store)
	if err != nil {
		s.fail(w, "fetch report data", err)
		return
	}
	soil, crops, pests, err := d.records()
	if err != nil {
		s.fail(w, "decode report data", err)
		return
	}
	day := s.now().UTC().Format(time.DateOnly)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "farm_report_"+day+".txt"))
	_, _ = io.WriteString(w, FarmReport(day, soil, crops, pests))
}

// FarmReport renders the plain text farm report.
func FarmReport(day string, soil []entities.SoilRecord, crops []entities.CropRecord, pests []entities.PestAlert) string {
	sum := Summarize(soil, crops, pests)
	var b strings.Builder
	fmt.Fprintf(&b, "KRISHI MITRA - FARM REPORT\nGenerated: %s\n\n", day)
	b.WriteString("SUMMARY STATISTICS\n==================\n")
	fmt.Fprintf(&b, "Total Soil Records: %d\n", sum.TotalSoilRecords)
	fmt.Fprintf(&b, "Total Crops: %d\n", sum.TotalCrops)
	fmt.Fprintf(&b, "Total Alerts: %d\n", sum.TotalAlerts)
	fmt.Fprintf(&b, "Average Moisture: %s%%\n", num(sum.AverageMoisture))
	fmt.Fprintf(&b, "Average Yield: %s%%\n", num(sum.AverageYield))
	fmt.Fprintf(&b, "Active Alerts: %d\n", sum.ActiveAlerts)

	b.WriteString("\nSOIL DATA\n=========\n")
	for _, r := range soil {
		fmt.Fprintf(&b, "Date: %s, Moisture: %s%%, pH: %s, Nitrogen: %sppm\n",
			r.CreatedAt.UTC().Format(time.DateOnly), num(r.SoilMoisture), num(r.SoilPH), num(r.Nitrogen))
	}
	b.WriteString("\nCROP DATA\n=========\n")
	for _, c := range crops {
		loc := c.FieldLocation
		if loc == "" {
			loc = "Unknown"
		}
		fmt.Fprintf(&b, "Crop: %s, Stage: %s, Yield: %s%%, Field: %s\n", c.CropType, c.GrowthStage, num(c.YieldPotential), loc)
	}
	b.WriteString("\nPEST ALERTS\n===========\n")
	for _, p := range pests {
		fmt.Fprintf(&b, "Type: %s, Field: %s, Severity: %s, Status: %s\n", p.AlertType, p.Field, p.Severity, p.Status)
	}
	return b.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

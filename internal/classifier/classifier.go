// Package classifier maps a soil sample to one finding per evaluated metric.
package classifier

import (
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

// Fixed thresholds. Values on a bound are Good.
const (
	PHLow        = 6.0
	PHHigh       = 8.0
	MoistureLow  = 50.0
	MoistureHigh = 85.0
	NitrogenLow  = 50.0
	NitrogenHigh = 120.0
)

type band struct {
	low, high float64
	critical  text // below low
	warning   text // above high
	good      text
}

type text struct{ message, recommendation string }

var bands = map[entities.Category]band{
	entities.CategoryPH: {
		low: PHLow, high: PHHigh,
		critical: text{"Soil pH is too low", "Add lime to increase pH to 6.0-7.0 range"},
		warning:  text{"Soil pH is too high", "Add sulfur or organic matter to lower pH"},
		good:     text{"Soil pH is optimal", "Maintain current pH level"},
	},
	entities.CategoryMoisture: {
		low: MoistureLow, high: MoistureHigh,
		critical: text{"Soil moisture is too low", "Increase irrigation frequency"},
		warning:  text{"Soil moisture is too high", "Reduce irrigation and improve drainage"},
		good:     text{"Soil moisture is optimal", "Maintain current irrigation schedule"},
	},
	entities.CategoryNitrogen: {
		low: NitrogenLow, high: NitrogenHigh,
		critical: text{"Nitrogen level is too low", "Apply nitrogen fertilizer (urea or ammonium nitrate)"},
		warning:  text{"Nitrogen level is too high", "Reduce nitrogen application to prevent leaching"},
		good:     text{"Nitrogen level is adequate", "Continue current fertilization program"},
	},
}

// Classify returns exactly one finding per category, in entities.Categories order.
func Classify(s entities.SoilSample) []entities.Finding {
	out := make([]entities.Finding, 0, len(entities.Categories))
	for _, c := range entities.Categories {
		out = append(out, classifyValue(c, value(s, c)))
	}
	return out
}

// Status classifies a single metric value.
func Status(c entities.Category, v float64) entities.Status {
	return classifyValue(c, v).Status
}

func classifyValue(c entities.Category, v float64) entities.Finding {
	b := bands[c]
	status, t := entities.StatusGood, b.good
	switch {
	case v < b.low:
		status, t = entities.StatusCritical, b.critical
	case v > b.high:
		status, t = entities.StatusWarning, b.warning
	}
	return entities.Finding{
		Category:       c,
		Status:         status,
		Message:        t.message,
		Recommendation: t.recommendation,
	}
}

func value(s entities.SoilSample, c entities.Category) float64 {
	switch c {
	case entities.CategoryPH:
		return s.PH
	case entities.CategoryMoisture:
		return s.Moisture
	default:
		return s.Nitrogen
	}
}

// Worst returns the most severe status among findings, StatusGood for none.
func Worst(findings []entities.Finding) entities.Status {
	worst := entities.StatusGood
	for _, f := range findings {
		if f.Status.Severity() > worst.Severity() {
			worst = f.Status
		}
	}
	return worst
}

// Summary counts findings by status.
func Summary(findings []entities.Finding) map[entities.Status]int {
	out := map[entities.Status]int{
		entities.StatusGood:     0,
		entities.StatusWarning:  0,
		entities.StatusCritical: 0,
	}
	for _, f := range findings {
		out[f.Status]++
	}
	return out
}

// Validate rejects samples outside the declared domain. Classify itself never fails.
func Validate(s entities.SoilSample) error {
	return s.Validate()
}

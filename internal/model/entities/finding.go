package entities

import "time"

// Category identifies the soil metric a Finding is about.
type Category string

const (
	CategoryPH       Category = "ph"
	CategoryMoisture Category = "moisture"
	CategoryNitrogen Category = "nitrogen"
)

// Categories lists every evaluated metric in presentation order.
var Categories = []Category{CategoryPH, CategoryMoisture, CategoryNitrogen}

// Label is the English heading shown next to a finding.
func (c Category) Label() string {
	switch c {
	case CategoryPH:
		return "Soil pH"
	case CategoryMoisture:
		return "Soil Moisture"
	case CategoryNitrogen:
		return "Nitrogen Level"
	}
	return string(c)
}

type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Severity orders statuses: good < warning < critical.
func (s Status) Severity() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	}
	return 0
}

// Finding is one classified result for a single soil metric.
type Finding struct {
	Category       Category `json:"category"`
	Status         Status   `json:"status"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

// EvaluationRecord is the row stored in evaluation_results when a farmer asks for the report.
type EvaluationRecord struct {
	ID        string     `json:"id,omitempty"`
	Email     string     `json:"email"`
	Sample    SoilSample `json:"soil_data"`
	Findings  []Finding  `json:"evaluation_results"`
	CreatedAt time.Time  `json:"created_at"`
}

package messages

import (
	"time"

	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

// EvaluationEvent is published on event/evaluation/{field}/{sensor} after a probe reading is classified.
type EvaluationEvent struct {
	FieldID   string              `json:"field_id"`
	SensorID  string              `json:"sensor_id"`
	Severity  string              `json:"severity"` // info|warning|error
	Worst     entities.Status     `json:"worst"`
	Sample    entities.SoilSample `json:"sample"`
	Findings  []entities.Finding  `json:"findings"`
	Timestamp time.Time           `json:"timestamp"`
}

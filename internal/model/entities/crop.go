package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidRecord = errors.New("invalid record")

// CropRecord is a row of crop_data.
type CropRecord struct {
	ID              string    `json:"id,omitempty"`
	CropType        string    `json:"crop_type"`
	GrowthStage     string    `json:"growth_stage"`
	YieldPotential  float64   `json:"yield_potential"` // %
	FieldLocation   string    `json:"field_location,omitempty"`
	PlantingDate    string    `json:"planting_date,omitempty"`
	ExpectedHarvest string    `json:"expected_harvest,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (c CropRecord) Validate() error {
	if strings.TrimSpace(c.CropType) == "" {
		return fmt.Errorf("%w: crop type is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(c.GrowthStage) == "" {
		return fmt.Errorf("%w: growth stage is required", ErrInvalidRecord)
	}
	if c.YieldPotential < 0 || c.YieldPotential > 100 {
		return fmt.Errorf("%w: yield potential must be between 0-100%%", ErrInvalidRecord)
	}
	return nil
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type AlertStatus string

const (
	AlertActive        AlertStatus = "active"
	AlertResolved      AlertStatus = "resolved"
	AlertInvestigating AlertStatus = "investigating"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertActive, AlertResolved, AlertInvestigating:
		return true
	}
	return false
}

// PestAlert is a row of pest_alerts.
type PestAlert struct {
	ID          string      `json:"id,omitempty"`
	AlertType   string      `json:"alert_type"`
	Field       string      `json:"field"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description,omitempty"`
	Status      AlertStatus `json:"status"`
	ReportedBy  string      `json:"reported_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (p PestAlert) Validate() error {
	if strings.TrimSpace(p.AlertType) == "" {
		return fmt.Errorf("%w: alert type is required", ErrInvalidRecord)
	}
	if strings.TrimSpace(p.Field) == "" {
		return fmt.Errorf("%w: field is required", ErrInvalidRecord)
	}
	switch p.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return fmt.Errorf("%w: please select severity level", ErrInvalidRecord)
	}
	if p.Status != "" && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown alert status %q", ErrInvalidRecord, p.Status)
	}
	return nil
}

package entities

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidSample = errors.New("invalid soil sample")

// SoilSample is the moisture/pH/nitrogen reading a farmer submits for evaluation.
type SoilSample struct {
	Moisture float64 `json:"moisture"` // % [0..100]
	PH       float64 `json:"ph"`       // [0..14]
	Nitrogen float64 `json:"nitrogen"` // ppm, >= 0
	Notes    string  `json:"notes,omitempty"`
}

// Validate checks the declared input domain. The classifier itself never rejects a sample.
func (s SoilSample) Validate() error {
	switch {
	case math.IsNaN(s.Moisture) || s.Moisture < 0 || s.Moisture > 100:
		return fmt.Errorf("%w: soil moisture must be between 0-100%%", ErrInvalidSample)
	case math.IsNaN(s.PH) || s.PH < 0 || s.PH > 14:
		return fmt.Errorf("%w: soil pH must be between 0-14", ErrInvalidSample)
	case math.IsNaN(s.Nitrogen) || s.Nitrogen < 0:
		return fmt.Errorf("%w: nitrogen must be a positive number", ErrInvalidSample)
	}
	return nil
}

type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "Sunny"
	WeatherRainy  WeatherCondition = "Rainy"
	WeatherCloudy WeatherCondition = "Cloudy"
)

// SoilRecord is a row of the soil_data table, as filled in by the soil data input form.
type SoilRecord struct {
	ID               string           `json:"id,omitempty"`
	FarmerID         string           `json:"farmer_id"`
	SoilMoisture     float64          `json:"soil_moisture"`
	SoilPH           float64          `json:"soil_ph"`
	Nitrogen         float64          `json:"nitrogen"`
	Phosphorus       float64          `json:"phosphorus"`
	Potassium        float64          `json:"potassium"`
	WeatherCondition WeatherCondition `json:"weather_condition"`
	SoilImageURL     string           `json:"soil_image_url,omitempty"`
	WaterImageURL    string           `json:"water_image_url,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (r SoilRecord) Validate() error {
	if strings.TrimSpace(r.FarmerID) == "" {
		return fmt.Errorf("%w: farmer ID is required", ErrInvalidSample)
	}
	if err := r.Sample().Validate(); err != nil {
		return err
	}
	if r.Phosphorus < 0 {
		return fmt.Errorf("%w: phosphorus must be a positive number", ErrInvalidSample)
	}
	if r.Potassium < 0 {
		return fmt.Errorf("%w: potassium must be a positive number", ErrInvalidSample)
	}
	switch r.WeatherCondition {
	case WeatherSunny, WeatherRainy, WeatherCloudy:
	default:
		return fmt.Errorf("%w: please select weather condition", ErrInvalidSample)
	}
	return nil
}

// Sample extracts the evaluated metrics from a stored soil record.
func (r SoilRecord) Sample() SoilSample {
	return SoilSample{
		Moisture: r.SoilMoisture,
		PH:       r.SoilPH,
		Nitrogen: r.Nitrogen,
		Notes:    r.Notes,
	}
}

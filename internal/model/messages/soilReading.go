package messages

import "time"

// SoilReading is published by field probes on sensor/soil/{field}/{sensor}.
type SoilReading struct {
	FieldID   string    `json:"field_id"`
	SensorID  string    `json:"sensor_id"`
	Moisture  float64   `json:"moisture"`
	PH        float64   `json:"ph"`
	Nitrogen  float64   `json:"nitrogen"`
	Timestamp time.Time `json:"timestamp"`
}

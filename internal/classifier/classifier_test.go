package classifier

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

func statuses(fs []entities.Finding) map[entities.Category]entities.Status {
	out := make(map[entities.Category]entities.Status, len(fs))
	for _, f := range fs {
		out[f.Category] = f.Status
	}
	return out
}

func TestClassify_OneFindingPerCategory(t *testing.T) {
	fs := Classify(entities.SoilSample{Moisture: 10, PH: 3, Nitrogen: 500})
	require.Len(t, fs, len(entities.Categories))
	for i, c := range entities.Categories {
		assert.Equal(t, c, fs[i].Category)
		assert.NotEmpty(t, fs[i].Message)
		assert.NotEmpty(t, fs[i].Recommendation)
	}
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		sample entities.SoilSample
		want   map[entities.Category]entities.Status
	}{
		{
			name:   "healthy sample",
			sample: entities.SoilSample{Moisture: 72, PH: 6.8, Nitrogen: 85},
			want: map[entities.Category]entities.Status{
				entities.CategoryMoisture: entities.StatusGood,
				entities.CategoryPH:       entities.StatusGood,
				entities.CategoryNitrogen: entities.StatusGood,
			},
		},
		{
			name:   "dry alkaline over-fertilised",
			sample: entities.SoilSample{Moisture: 30, PH: 9.0, Nitrogen: 200},
			want: map[entities.Category]entities.Status{
				entities.CategoryMoisture: entities.StatusCritical,
				entities.CategoryPH:       entities.StatusWarning,
				entities.CategoryNitrogen: entities.StatusWarning,
			},
		},
		{
			name:   "lower bounds are inclusive",
			sample: entities.SoilSample{Moisture: 50, PH: 6.0, Nitrogen: 50},
			want: map[entities.Category]entities.Status{
				entities.CategoryMoisture: entities.StatusGood,
				entities.CategoryPH:       entities.StatusGood,
				entities.CategoryNitrogen: entities.StatusGood,
			},
		},
		{
			name:   "upper bounds are inclusive",
			sample: entities.SoilSample{Moisture: 85, PH: 8.0, Nitrogen: 120},
			want: map[entities.Category]entities.Status{
				entities.CategoryMoisture: entities.StatusGood,
				entities.CategoryPH:       entities.StatusGood,
				entities.CategoryNitrogen: entities.StatusGood,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, statuses(Classify(tt.sample))); diff != "" {
				t.Errorf("statuses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatus_Thresholds(t *testing.T) {
	tests := []struct {
		category entities.Category
		value    float64
		want     entities.Status
	}{
		{entities.CategoryMoisture, 0, entities.StatusCritical},
		{entities.CategoryMoisture, 49.99, entities.StatusCritical},
		{entities.CategoryMoisture, 50, entities.StatusGood},
		{entities.CategoryMoisture, 85, entities.StatusGood},
		{entities.CategoryMoisture, 85.01, entities.StatusWarning},
		{entities.CategoryMoisture, 100, entities.StatusWarning},
		{entities.CategoryPH, 5.99, entities.StatusCritical},
		{entities.CategoryPH, 6.0, entities.StatusGood},
		{entities.CategoryPH, 8.0, entities.StatusGood},
		{entities.CategoryPH, 8.01, entities.StatusWarning},
		{entities.CategoryNitrogen, 49.9, entities.StatusCritical},
		{entities.CategoryNitrogen, 50, entities.StatusGood},
		{entities.CategoryNitrogen, 120, entities.StatusGood},
		{entities.CategoryNitrogen, 120.5, entities.StatusWarning},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.category, tt.value), "%s=%v", tt.category, tt.value)
	}
}

// Sweep the declared domain so every value lands in the band the thresholds describe.
func TestStatus_Sweep(t *testing.T) {
	for m := 0.0; m <= 100; m += 0.5 {
		got := Status(entities.CategoryMoisture, m)
		switch {
		case m < 50:
			assert.Equal(t, entities.StatusCritical, got, "moisture %v", m)
		case m > 85:
			assert.Equal(t, entities.StatusWarning, got, "moisture %v", m)
		default:
			assert.Equal(t, entities.StatusGood, got, "moisture %v", m)
		}
	}
	for p := 0.0; p <= 14; p += 0.25 {
		got := Status(entities.CategoryPH, p)
		switch {
		case p < 6:
			assert.Equal(t, entities.StatusCritical, got, "ph %v", p)
		case p > 8:
			assert.Equal(t, entities.StatusWarning, got, "ph %v", p)
		default:
			assert.Equal(t, entities.StatusGood, got, "ph %v", p)
		}
	}
	for n := 0.0; n <= 300; n += 2.5 {
		got := Status(entities.CategoryNitrogen, n)
		switch {
		case n < 50:
			assert.Equal(t, entities.StatusCritical, got, "nitrogen %v", n)
		case n > 120:
			assert.Equal(t, entities.StatusWarning, got, "nitrogen %v", n)
		default:
			assert.Equal(t, entities.StatusGood, got, "nitrogen %v", n)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	s := entities.SoilSample{Moisture: 44, PH: 8.3, Nitrogen: 90, Notes: "north plot"}
	assert.Equal(t, Classify(s), Classify(s))
}

func TestClassify_Recommendations(t *testing.T) {
	fs := Classify(entities.SoilSample{Moisture: 30, PH: 5.5, Nitrogen: 10})
	assert.Equal(t, "Add lime to increase pH to 6.0-7.0 range", fs[0].Recommendation)
	assert.Equal(t, "Increase irrigation frequency", fs[1].Recommendation)
	assert.Equal(t, "Apply nitrogen fertilizer (urea or ammonium nitrate)", fs[2].Recommendation)
}

func TestWorstAndSummary(t *testing.T) {
	assert.Equal(t, entities.StatusGood, Worst(nil))

	fs := Classify(entities.SoilSample{Moisture: 30, PH: 9.0, Nitrogen: 200})
	assert.Equal(t, entities.StatusCritical, Worst(fs))
	assert.Equal(t, map[entities.Status]int{
		entities.StatusGood:     0,
		entities.StatusWarning:  2,
		entities.StatusCritical: 1,
	}, Summary(fs))
}

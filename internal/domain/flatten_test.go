package domain_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syngenta/meteobe/internal/domain"
)

const (
	idCol  = "Trial_ID"
	latCol = "Latitude"
	lonCol = "Longitude"
)

func weatherDataset() domain.Dataset {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	return domain.Dataset{
		Geometries: []domain.GeometryInfo{{
			Lats: []float64{-23.55},
			Lons: []float64{-46.63},
			TimeIntervals: []domain.TimeInterval{
				{Start: start, End: start + 86400, Stride: 86400},
			},
			Codes: []domain.CodeSeries{
				{
					Code:        domain.CodeTemperature,
					Level:       domain.LevelTwoMeterElevCorrected,
					Aggregation: domain.AggMean,
					Unit:        "C",
					Data:        [][]float64{{21.4}},
				},
				{
					Code:  domain.CodeWindDirection,
					Level: domain.LevelTenMeterAboveGround,
					Unit:  "degrees",
					Data:  [][]float64{{180}},
				},
			},
		}},
	}
}

func soilDataset() domain.Dataset {
	return domain.Dataset{
		Geometries: []domain.GeometryInfo{{
			Lats: []float64{-23.55},
			Lons: []float64{-46.63},
			Codes: []domain.CodeSeries{
				{
					Code:       domain.CodeClayContent,
					Level:      domain.LevelAggregated,
					Unit:       "%",
					StartDepth: 0,
					EndDepth:   30,
					Data:       [][]float64{{32.1}},
				},
				{
					Code:  domain.CodeOrganicCarbonStocks,
					Level: "0-30 cm",
					Unit:  "t/ha",
					Data:  [][]float64{{54.7}},
				},
			},
		}},
	}
}

func TestFlattenWeather_ColumnSynthesis(t *testing.T) {
	row, err := domain.FlattenWeather(weatherDataset(), idCol, "T-001", latCol, lonCol)
	require.NoError(t, err)

	assert.Equal(t, "T-001", row[idCol])
	assert.Equal(t, -23.55, row[latCol])
	assert.Equal(t, -46.63, row[lonCol])
	assert.Equal(t, "2021-03-01 00:00:00", row[domain.DatesColumn])

	// Aggregated variables title-case the aggregation.
	assert.Equal(t, 21.4, row["Temperature_(Mean)_(C)"])
	// Non-aggregated variables label by level.
	assert.Equal(t, float64(180), row["Wind_direction_(10 m above gnd)_(degrees)"])
}

func TestFlattenSoil_ColumnSynthesis(t *testing.T) {
	row, err := domain.FlattenSoil(soilDataset(), idCol, "T-001", latCol, lonCol)
	require.NoError(t, err)

	// Depth-banded properties label by band, fixed-level ones by level.
	assert.Equal(t, 32.1, row["Clay_content_(0-30)_(%)"])
	assert.Equal(t, 54.7, row["Organic_carbon_stocks_(0-30 cm)_(t/ha)"])
}

func TestFlatten_Idempotent(t *testing.T) {
	ds := weatherDataset()

	first, err := domain.FlattenWeather(ds, idCol, "T-001", latCol, lonCol)
	require.NoError(t, err)
	second, err := domain.FlattenWeather(ds, idCol, "T-001", latCol, lonCol)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("flattening is not idempotent (-first +second):\n%s", diff)
	}
}

func TestFlattenWeather_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		ds   domain.Dataset
	}{
		{"empty response", domain.Dataset{}},
		{"no coordinates", domain.Dataset{Geometries: []domain.GeometryInfo{{}}}},
		{
			"no time intervals",
			domain.Dataset{Geometries: []domain.GeometryInfo{{
				Lats: []float64{1}, Lons: []float64{2},
			}}},
		},
		{
			"code without data",
			domain.Dataset{Geometries: []domain.GeometryInfo{{
				Lats: []float64{1}, Lons: []float64{2},
				TimeIntervals: []domain.TimeInterval{{Start: 0, End: 86400, Stride: 86400}},
				Codes:         []domain.CodeSeries{{Code: domain.CodeTemperature, Unit: "C"}},
			}}},
		},
		{
			"unknown code",
			domain.Dataset{Geometries: []domain.GeometryInfo{{
				Lats: []float64{1}, Lons: []float64{2},
				TimeIntervals: []domain.TimeInterval{{Start: 0, End: 86400, Stride: 86400}},
				Codes:         []domain.CodeSeries{{Code: 9999, Unit: "C", Data: [][]float64{{1}}}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.FlattenWeather(tt.ds, idCol, "x", latCol, lonCol)
			assert.ErrorIs(t, err, domain.ErrExtraction)
		})
	}
}

func TestFlattenSoil_EmptyResponse(t *testing.T) {
	_, err := domain.FlattenSoil(domain.Dataset{}, idCol, "x", latCol, lonCol)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestTimeInterval_Timestamps(t *testing.T) {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	iv := domain.TimeInterval{Start: start, End: start + 3*86400, Stride: 86400}

	labels := iv.Timestamps()
	assert.Equal(t, []string{
		"2021-03-01 00:00:00",
		"2021-03-02 00:00:00",
		"2021-03-03 00:00:00",
	}, labels)

	assert.Nil(t, domain.TimeInterval{Start: start, End: start, Stride: 86400}.Timestamps())
	assert.Nil(t, domain.TimeInterval{Start: start, End: start + 86400}.Timestamps())
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// DatesColumn is the output column carrying the representative timestamp of
// a weather response.
const DatesColumn = "Dates"

// Dataset is the typed view of one provider response. The transport adapter
// maps the wire schema into this shape so flattening never touches raw maps.
type Dataset struct {
	Geometries []GeometryInfo
}

// GeometryInfo holds one returned location: coordinates, the time intervals
// covered, and one series per requested code.
type GeometryInfo struct {
	Lats          []float64
	Lons          []float64
	TimeIntervals []TimeInterval
	Codes         []CodeSeries
}

// TimeInterval is a half-open [Start, End) range of Unix seconds with a
// fixed stride between points.
type TimeInterval struct {
	Start  int64
	End    int64
	Stride int64
}

// CodeSeries is the returned data for one requested code: the identifying
// quintuple plus per-interval data arrays.
type CodeSeries struct {
	Code        int
	Level       string
	Aggregation string
	Unit        string
	StartDepth  int
	EndDepth    int
	Data        [][]float64 // one array per time interval
}

// Timestamps expands the interval into formatted labels, one per stride.
func (iv TimeInterval) Timestamps() []string {
	if iv.Stride <= 0 || iv.End <= iv.Start {
		return nil
	}
	var labels []string
	for ts := iv.Start; ts < iv.End; ts += iv.Stride {
		labels = append(labels, time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05"))
	}
	return labels
}

// FlattenWeather converts one weather response into a flat row: identifier,
// coordinates, the first timestamp label of the first interval, and one
// synthesized column per returned code. Only the first data point of each
// code's first interval is kept; the request covers the whole window with a
// single aggregated interval, and anything else is schema drift.
func FlattenWeather(ds Dataset, idCol, idValue, latCol, lonCol string) (ResultRow, error) {
	geom, err := singleGeometry(ds)
	if err != nil {
		return nil, err
	}

	row := ResultRow{
		idCol:  idValue,
		latCol: geom.Lats[0],
		lonCol: geom.Lons[0],
	}

	if len(geom.TimeIntervals) == 0 {
		return nil, fmt.Errorf("%w: response has no time intervals", ErrExtraction)
	}
	labels := geom.TimeIntervals[0].Timestamps()
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: response time interval is empty", ErrExtraction)
	}
	row[DatesColumn] = labels[0]

	for _, series := range geom.Codes {
		name, ok := VariableName(series.Code)
		if !ok {
			return nil, fmt.Errorf("%w: unknown variable code %d", ErrExtraction, series.Code)
		}
		value, err := firstDataPoint(series)
		if err != nil {
			return nil, err
		}

		middle := titleAggregation(series.Aggregation)
		if middle == "" {
			// Non-aggregated variables (wind direction) label by level.
			middle = series.Level
		}
		row[columnName(name, middle, series.Unit)] = value
	}

	return row, nil
}

// FlattenSoil converts one soil response into a flat row. Depth-banded
// properties (level "aggregated") are labelled by their startDepth-endDepth
// band; the rest (organic carbon stocks) by their raw level string.
func FlattenSoil(ds Dataset, idCol, idValue, latCol, lonCol string) (ResultRow, error) {
	geom, err := singleGeometry(ds)
	if err != nil {
		return nil, err
	}

	row := ResultRow{
		idCol:  idValue,
		latCol: geom.Lats[0],
		lonCol: geom.Lons[0],
	}

	for _, series := range geom.Codes {
		name, ok := VariableName(series.Code)
		if !ok {
			return nil, fmt.Errorf("%w: unknown variable code %d", ErrExtraction, series.Code)
		}
		value, err := firstDataPoint(series)
		if err != nil {
			return nil, err
		}

		var middle string
		if series.Level == LevelAggregated {
			middle = fmt.Sprintf("%d-%d", series.StartDepth, series.EndDepth)
		} else {
			middle = series.Level
		}
		row[columnName(name, middle, series.Unit)] = value
	}

	return row, nil
}

// columnName synthesizes the output column for one measurement:
// "<Variable_with_underscores>_(<middle>)_(<unit>)".
func columnName(variable, middle, unit string) string {
	return strings.ReplaceAll(variable, " ", "_") + "_(" + middle + ")_(" + unit + ")"
}

// titleAggregation upper-cases the first letter only: "mean" → "Mean".
func titleAggregation(agg string) string {
	if agg == "" {
		return ""
	}
	return strings.ToUpper(agg[:1]) + agg[1:]
}

func singleGeometry(ds Dataset) (GeometryInfo, error) {
	if len(ds.Geometries) == 0 {
		return GeometryInfo{}, fmt.Errorf("%w: response has no geometries", ErrExtraction)
	}
	geom := ds.Geometries[0]
	if len(geom.Lats) == 0 || len(geom.Lons) == 0 {
		return GeometryInfo{}, fmt.Errorf("%w: response geometry has no coordinates", ErrExtraction)
	}
	return geom, nil
}

func firstDataPoint(series CodeSeries) (float64, error) {
	if len(series.Data) == 0 || len(series.Data[0]) == 0 {
		return 0, fmt.Errorf("%w: code %d returned no data", ErrExtraction, series.Code)
	}
	return series.Data[0][0], nil
}

package domain

import (
	"encoding/json"
	"fmt"
)

// organicCarbonStocksLevel is the fixed depth band for the organic carbon
// stocks code. SOILGRIDS2 publishes stocks for 0-30 cm only, so this entry
// never scales with the caller's start/end depth.
const organicCarbonStocksLevel = "0-30 cm"

// Default soil depth bands requested per location.
const (
	SoilStartDepth    = 0
	SoilEndDepthShort = 30
	SoilEndDepthDeep  = 60
)

// CodeSpec requests one measurement: a variable code at a level, optionally
// aggregated or banded by depth.
type CodeSpec struct {
	Code        int    `json:"code"`
	Level       string `json:"level"`
	Aggregation string `json:"aggregation,omitempty"`
	StartDepth  int    `json:"startDepth,omitempty"`
	EndDepth    int    `json:"endDepth,omitempty"`
}

// Transformation post-processes a query server-side, e.g. aggregating an
// hourly series to daily values.
type Transformation struct {
	Type        string `json:"type"`
	Aggregation string `json:"aggregation"`
}

// Query is one block of a dataset request: a data domain, a time
// resolution, and the codes to read from it.
type Query struct {
	Domain string `json:"domain"`
	// GapFillDomain carries an explicit null on the hourly UV block and is
	// absent everywhere else, so it is raw JSON rather than a pointer.
	GapFillDomain   json.RawMessage  `json:"gapFillDomain,omitempty"`
	TimeResolution  string           `json:"timeResolution,omitempty"`
	Codes           []CodeSpec       `json:"codes"`
	Transformations []Transformation `json:"transformations,omitempty"`
}

// NullGapFill is the explicit "gapFillDomain": null of the UV block.
var NullGapFill = json.RawMessage("null")

// BuildWeatherQuery assembles the five weather query blocks for one
// location. Blocks: the fixed NEMSGLOBAL general-atmosphere block, the
// temperature / precipitation / wind blocks from the per-country best
// domains, and the fixed hourly ERA5 UV block aggregated to daily (ERA5 has
// no native daily UV product). The code tables are fixed policy; only the
// three resolved domains vary with the country.
func BuildWeatherQuery(countryCode string, precipitation, temperature, wind DomainMap) []Query {
	return []Query{
		{
			Domain:         DomainNEMSGlobal,
			TimeResolution: ResolutionDaily,
			Codes: []CodeSpec{
				{Code: CodeHumidity, Level: LevelTwoMeterAboveGround, Aggregation: AggMax},
				{Code: CodeHumidity, Level: LevelTwoMeterAboveGround, Aggregation: AggMin},
				{Code: CodeHumidity, Level: LevelTwoMeterAboveGround, Aggregation: AggMean},
				{Code: CodeCloudCoverTotal, Level: LevelSurface, Aggregation: AggMean},
				{Code: CodeCloudCoverHigh, Level: LevelHighCloudLayer, Aggregation: AggMean},
				{Code: CodeCloudCoverMedium, Level: LevelMidCloudLayer, Aggregation: AggMean},
				{Code: CodeCloudCoverLow, Level: LevelLowCloudLayer, Aggregation: AggMean},
				{Code: CodeSunshineDuration, Level: LevelSurface, Aggregation: AggSum},
				{Code: CodeShortwaveRadiationTotal, Level: LevelSurface, Aggregation: AggMean},
				{Code: CodeShortwaveRadiationDirect, Level: LevelSurface, Aggregation: AggMean},
				{Code: CodeShortwaveRadiationDiffuse, Level: LevelSurface, Aggregation: AggMean},
				{Code: CodeEvapotranspiration, Level: LevelSurface, Aggregation: AggSum},
				{Code: CodeSoilTemperature, Level: LevelTenCentimetersDown, Aggregation: AggMax},
				{Code: CodeSoilTemperature, Level: LevelTenCentimetersDown, Aggregation: AggMin},
				{Code: CodeSoilTemperature, Level: LevelTenCentimetersDown, Aggregation: AggMean},
				{Code: CodeSoilMoisture, Level: LevelTenCentimetersDown, Aggregation: AggMax},
				{Code: CodeSoilMoisture, Level: LevelTenCentimetersDown, Aggregation: AggMin},
				{Code: CodeSoilMoisture, Level: LevelTenCentimetersDown, Aggregation: AggMean},
				{Code: CodeVapourPressureDeficit, Level: LevelTwoMeterAboveGround, Aggregation: AggMax},
				{Code: CodeVapourPressureDeficit, Level: LevelTwoMeterAboveGround, Aggregation: AggMin},
				{Code: CodeVapourPressureDeficit, Level: LevelTwoMeterAboveGround, Aggregation: AggMean},
			},
		},
		{
			Domain:         temperature.Resolve(countryCode),
			TimeResolution: ResolutionDaily,
			Codes: []CodeSpec{
				{Code: CodeTemperature, Level: LevelTwoMeterElevCorrected, Aggregation: AggMax},
				{Code: CodeTemperature, Level: LevelTwoMeterElevCorrected, Aggregation: AggMin},
				{Code: CodeTemperature, Level: LevelTwoMeterElevCorrected, Aggregation: AggMean},
			},
		},
		{
			Domain:         precipitation.Resolve(countryCode),
			TimeResolution: ResolutionDaily,
			Codes: []CodeSpec{
				{Code: CodePrecipitation, Level: LevelSurface, Aggregation: AggSum},
			},
		},
		{
			Domain:         wind.Resolve(countryCode),
			TimeResolution: ResolutionDaily,
			Codes: []CodeSpec{
				{Code: CodeWindSpeed, Level: LevelTenMeterAboveGround, Aggregation: AggMax},
				{Code: CodeWindSpeed, Level: LevelTenMeterAboveGround, Aggregation: AggMin},
				{Code: CodeWindSpeed, Level: LevelTenMeterAboveGround, Aggregation: AggMean},
				{Code: CodeWindDirection, Level: LevelTenMeterAboveGround},
			},
		},
		{
			Domain:         DomainERA5,
			GapFillDomain:  NullGapFill,
			TimeResolution: ResolutionHourly,
			Codes: []CodeSpec{
				{Code: CodeUVIndex, Level: LevelSurface},
			},
			Transformations: []Transformation{
				{Type: "aggregateDaily", Aggregation: AggMean},
			},
		},
	}
}

// BuildSoilQuery assembles the SOILGRIDS2 block for one depth band. Every
// property is aggregated over [startDepth, endDepth) except organic carbon
// stocks, which is pinned to organicCarbonStocksLevel.
func BuildSoilQuery(startDepth, endDepth int) Query {
	banded := func(code int) CodeSpec {
		return CodeSpec{
			Code:       code,
			Level:      LevelAggregated,
			StartDepth: startDepth,
			EndDepth:   endDepth,
		}
	}

	return Query{
		Domain: DomainSoilGrids2,
		Codes: []CodeSpec{
			banded(CodeBulkDensity),
			banded(CodeCationExchangeCapacity),
			banded(CodeClayContent),
			banded(CodeCoarseFragments),
			banded(CodeOrganicCarbonContent),
			banded(CodeOrganicCarbonDensity),
			{Code: CodeOrganicCarbonStocks, Level: organicCarbonStocksLevel},
			banded(CodeSandContent),
			banded(CodeSiltContent),
			banded(CodeTotalNitrogenContent),
			banded(CodePHInWater),
		},
	}
}

// Units selects the measurement system for a dataset request.
type Units struct {
	Temperature string `json:"temperature"`
	Velocity    string `json:"velocity"`
	Length      string `json:"length"`
	Energy      string `json:"energy"`
}

// PointGeometry requests data for explicit coordinates.
type PointGeometry struct {
	Type          string      `json:"type"`
	Coordinates   [][]float64 `json:"coordinates"`
	LocationNames []string    `json:"locationNames"`
	Mode          string      `json:"mode"`
}

// Payload is a complete dataset request: units, one location, one time
// interval, and the query blocks.
type Payload struct {
	Units                  Units         `json:"units"`
	Geometry               PointGeometry `json:"geometry"`
	Format                 string        `json:"format"`
	TimeIntervals          []string      `json:"timeIntervals"`
	TimeIntervalsAlignment string        `json:"timeIntervalsAlignment"`
	Queries                []Query       `json:"queries"`
}

// BuildPayload wraps query blocks into a request for one coordinate pair
// and time window. Coordinates are lon,lat order on the wire.
func BuildPayload(lat, lon float64, window TimeWindow, queries []Query) Payload {
	interval := fmt.Sprintf("%sT+10:00/%sT+10:00",
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))

	return Payload{
		Units: Units{
			Temperature: "CELSIUS",
			Velocity:    "KILOMETER_PER_HOUR",
			Length:      "metric",
			Energy:      "watts",
		},
		Geometry: PointGeometry{
			Type:          "MultiPoint",
			Coordinates:   [][]float64{{lon, lat}},
			LocationNames: []string{""},
			Mode:          "preferLandWithMatchingElevation",
		},
		Format:                 "json",
		TimeIntervals:          []string{interval},
		TimeIntervalsAlignment: "none",
		Queries:                queries,
	}
}

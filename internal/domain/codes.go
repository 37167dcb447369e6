package domain

// Data domains.
const (
	DomainNEMSGlobal = "NEMSGLOBAL"
	DomainERA5       = "ERA5"
	DomainERA5T      = "ERA5T"
	DomainSoilGrids2 = "SOILGRIDS2"
)

// Weather variable codes.
const (
	CodeTemperature               = 11
	CodeWindSpeed                 = 32
	CodeHumidity                  = 52
	CodeVapourPressureDeficit     = 56
	CodePrecipitation             = 61
	CodeCloudCoverTotal           = 71
	CodeCloudCoverLow             = 73
	CodeCloudCoverMedium          = 74
	CodeCloudCoverHigh            = 75
	CodeSoilTemperature           = 85
	CodeSoilMoisture              = 144
	CodeSunshineDuration          = 191
	CodeShortwaveRadiationTotal   = 204
	CodeShortwaveRadiationDiffuse = 256
	CodeShortwaveRadiationDirect  = 258
	CodeEvapotranspiration        = 261
	CodeUVIndex                   = 721
	CodeWindDirection             = 735
)

// Soil property codes (SOILGRIDS2).
const (
	CodeClayContent            = 803
	CodeSiltContent            = 804
	CodeSandContent            = 805
	CodeCoarseFragments        = 807
	CodeBulkDensity            = 808
	CodeCationExchangeCapacity = 809
	CodeOrganicCarbonContent   = 811
	CodePHInWater              = 812
	CodeTotalNitrogenContent   = 817
	CodeOrganicCarbonStocks    = 837
	CodeOrganicCarbonDensity   = 838
)

// Measurement levels.
const (
	LevelTwoMeterElevCorrected = "2 m elevation corrected"
	LevelTwoMeterAboveGround   = "2 m above gnd"
	LevelTenMeterAboveGround   = "10 m above gnd"
	LevelSurface               = "sfc"
	LevelHighCloudLayer        = "high cld lay"
	LevelMidCloudLayer         = "mid cld lay"
	LevelLowCloudLayer         = "low cld lay"
	LevelTenCentimetersDown    = "0-10 cm down"
	LevelAggregated            = "aggregated"
)

// Aggregations.
const (
	AggMax  = "max"
	AggMin  = "min"
	AggMean = "mean"
	AggSum  = "sum"
)

// Time resolutions.
const (
	ResolutionDaily  = "daily"
	ResolutionHourly = "hourly"
)

// VariableInfo maps a meteoblue numeric code to its display name, used when
// synthesizing output column names.
type VariableInfo struct {
	Code int
	Name string
}

// variableTable is the fixed code→variable catalogue for every code this
// tool requests. Mirrors the meteoblue codes listing.
var variableTable = []VariableInfo{
	{CodeTemperature, "Temperature"},
	{CodeWindSpeed, "Wind speed"},
	{CodeHumidity, "Relative humidity"},
	{CodeVapourPressureDeficit, "Vapour pressure deficit"},
	{CodePrecipitation, "Precipitation amount"},
	{CodeCloudCoverTotal, "Cloud cover total"},
	{CodeCloudCoverLow, "Cloud cover low"},
	{CodeCloudCoverMedium, "Cloud cover medium"},
	{CodeCloudCoverHigh, "Cloud cover high"},
	{CodeSoilTemperature, "Soil temperature"},
	{CodeSoilMoisture, "Soil moisture"},
	{CodeSunshineDuration, "Sunshine duration"},
	{CodeShortwaveRadiationTotal, "Shortwave radiation"},
	{CodeShortwaveRadiationDiffuse, "Diffuse shortwave radiation"},
	{CodeShortwaveRadiationDirect, "Direct shortwave radiation"},
	{CodeEvapotranspiration, "Evapotranspiration"},
	{CodeUVIndex, "UV index"},
	{CodeWindDirection, "Wind direction"},

	{CodeClayContent, "Clay content"},
	{CodeSiltContent, "Silt content"},
	{CodeSandContent, "Sand content"},
	{CodeCoarseFragments, "Coarse fragments"},
	{CodeBulkDensity, "Bulk density"},
	{CodeCationExchangeCapacity, "Cation exchange capacity"},
	{CodeOrganicCarbonContent, "Organic carbon content"},
	{CodePHInWater, "pH in water"},
	{CodeTotalNitrogenContent, "Total nitrogen content"},
	{CodeOrganicCarbonStocks, "Organic carbon stocks"},
	{CodeOrganicCarbonDensity, "Organic carbon density"},
}

var variablesByCode = func() map[int]string {
	m := make(map[int]string, len(variableTable))
	for _, v := range variableTable {
		m[v.Code] = v.Name
	}
	return m
}()

// VariableName returns the display name for a meteoblue code.
func VariableName(code int) (string, bool) {
	name, ok := variablesByCode[code]
	return name, ok
}

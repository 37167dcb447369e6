// Package domain models meteoblue dataset queries and responses for trial
// field locations.
//
// # Data Source
//
// Weather and soil observations come from the meteoblue dataset API. A query
// names a data domain (a model or reanalysis product such as NEMSGLOBAL or
// ERA5T), a time resolution, and a list of coded variables; the response
// carries one geometry per requested location with a per-variable time
// series. Which domain is "best" for precipitation, temperature, and wind
// varies by country, so the three families are resolved independently
// through country→domain maps with a required DEFAULT entry.
//
// # Variable Codes
//
// Variables are identified by meteoblue numeric codes (11 = temperature,
// 61 = precipitation, 32 = wind speed, ...). The full set requested by this
// tool is fixed and lives in the declarative tables in codes.go and
// query.go; it is policy, not derived from input.
//
// # Column Naming
//
// Flattened output columns follow the meteoblue export convention:
//
//	<Variable with spaces as underscores>_(<Middle>)_(<unit>)
//
// where <Middle> is the aggregation with its first letter upper-cased
// ("Temperature_(Mean)_(C)"), the "startDepth-endDepth" band for aggregated
// soil properties ("Clay_content_(0-30)_(%)"), or the raw level string for
// non-aggregated variables such as wind direction and organic carbon stocks
// ("Organic_carbon_stocks_(0-30 cm)_(t/ha)").
//
// # Narrowing Assumptions
//
// Two response-shape assumptions are deliberate, named policy rather than
// incidental behavior: organic carbon stocks is always requested at the
// fixed "0-30 cm" band regardless of the caller's depths, and flattening
// keeps only the first data point of the first returned time interval (the
// request covers the whole window with one aggregated interval). A response
// that violates them fails loudly as an extraction error.
package domain

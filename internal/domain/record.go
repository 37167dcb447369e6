package domain

import "time"

// TrialRecord is one row of the user's trial/field table after parsing.
// Dates holds the values of the user-chosen date columns by column name.
type TrialRecord struct {
	ID          string
	Lat         float64
	Lon         float64
	CountryCode string
	Dates       map[string]time.Time
}

// ResultRow is one flattened provider response: synthesized column name to
// scalar value. A record either contributes a complete row or nothing.
type ResultRow map[string]any

// FailedRecord describes an input row that produced no result.
type FailedRecord struct {
	ID          string  `csv:"id"`
	Latitude    float64 `csv:"latitude"`
	Longitude   float64 `csv:"longitude"`
	CountryCode string  `csv:"country_code"`
	StartDate   string  `csv:"start_date"`
	EndDate     string  `csv:"end_date"`
	Reason      string  `csv:"reason"`
}

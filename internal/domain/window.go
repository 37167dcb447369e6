package domain

import (
	"fmt"
	"time"
)

// TimeWindow is the request date range derived for one record. Construction
// does not guarantee Start <= End; the provider validates the interval.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// DeriveWindow computes the request window from a record's dates of
// interest: min(dates)+startOffsetDays to max(dates)+endOffsetDays, both
// truncated to calendar date. Offsets are expected to be pre-clamped by
// ClampOffsets.
func DeriveWindow(dates []time.Time, startOffsetDays, endOffsetDays int) (TimeWindow, error) {
	if len(dates) == 0 {
		return TimeWindow{}, fmt.Errorf("%w: no dates of interest", ErrInput)
	}

	minDate, maxDate := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	return TimeWindow{
		Start: truncateToDate(minDate.AddDate(0, 0, startOffsetDays)),
		End:   truncateToDate(maxDate.AddDate(0, 0, endOffsetDays)),
	}, nil
}

// ClampOffsets enforces the window safety rule: the window must not start
// after the earliest event of interest (startOffset <= 0) nor end before the
// latest (endOffset >= 0). Violations are clamped to 0; the returned flags
// let the caller warn about the correction.
func ClampOffsets(startOffset, endOffset int) (start, end int, clampedStart, clampedEnd bool) {
	start, end = startOffset, endOffset
	if start > 0 {
		start = 0
		clampedStart = true
	}
	if end < 0 {
		end = 0
		clampedEnd = true
	}
	return start, end, clampedStart, clampedEnd
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

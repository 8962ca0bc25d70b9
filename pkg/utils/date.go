package utils

import "time"

// ParseDateIn parses a YYYY-MM-DD string as midnight in loc.
// An empty string returns nil without error.
func ParseDateIn(dateStr string, loc *time.Location) (*time.Time, error) {
	if dateStr == "" {
		return nil, nil
	}

	if loc == nil {
		loc = time.Local
	}

	date, err := time.ParseInLocation(time.DateOnly, dateStr, loc)
	if err != nil {
		return nil, err
	}

	return &date, nil
}

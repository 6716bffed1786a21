package httpx

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DateRange parses optional from/to query parameters formatted as YYYY-MM-DD.
func DateRange(q url.Values) (from, to *time.Time, err error) {
	if from, err = optionalDate(q, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = optionalDate(q, "to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: to must not be before from", ErrValidation)
	}
	return from, to, nil
}

func optionalDate(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, key)
	}
	return &t, nil
}

// IntParam reads a positive integer query parameter, falling back to def and
// capping at max when max > 0.
func IntParam(q url.Values, key string, def, max int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

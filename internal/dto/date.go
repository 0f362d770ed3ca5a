package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// BusinessDate is a UTC calendar day. It accepts "2006-01-02" or an RFC 3339 instant.
type BusinessDate struct {
	time.Time
}

func (d *BusinessDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("business date must be a string: %w", err)
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("business date %q is neither YYYY-MM-DD nor RFC 3339", raw)
	}
	u := t.UTC()
	d.Time = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d BusinessDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.DateOnly))
}

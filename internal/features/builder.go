// Package features builds the ordered feature vector a model expects from a
// raw request-scoped observation. The output order and length always match
// the schema; parity between the trained representation and the served one
// is this package's whole job.
package features

import (
	"math"
	"strconv"
	"time"

	"powerd/internal/schema"
)

// Observation is the raw, request-scoped input: submitted field values (still
// in string form) plus the observation timestamp.
type Observation struct {
	Fields    map[string]string
	Timestamp time.Time
}

// Build derives the feature vector for s from obs. Slots are filled in
// schema order. Lagged slots are filled from the current observation: the
// models predict the next step from the current one, so the current value is
// the lag-1 value relative to the prediction target. Substituting anything
// else here (or defaulting missing fields) silently breaks train/serve
// parity, which is why every miss is a hard error.
func Build(obs Observation, s *schema.Schema) ([]float64, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrSchemaViolation("empty schema")
	}
	vec := make([]float64, 0, s.Len())
	for _, f := range s.Features {
		switch f.Transform {
		case schema.TransformIdentity, schema.TransformLag:
			raw, ok := obs.Fields[f.Source]
			if !ok || raw == "" {
				return nil, ErrMissingField(f.Source)
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ErrInvalidNumber(f.Source, raw)
			}
			vec = append(vec, v)
		case schema.TransformTime:
			vec = append(vec, timeFeature(obs.Timestamp, f.Unit))
		default:
			return nil, ErrSchemaViolation("unhandled transform for feature " + f.Name)
		}
	}
	if len(vec) != s.Len() {
		// Length mismatch here is a programming error, not user input.
		return nil, ErrSchemaViolation("built vector length does not match schema")
	}
	return vec, nil
}

// timeFeature extracts a timestamp-derived slot. Day-of-week follows the
// training convention (Monday=0 .. Sunday=6).
func timeFeature(ts time.Time, unit schema.TimeUnit) float64 {
	switch unit {
	case schema.UnitHour:
		return float64(ts.Hour())
	case schema.UnitDayOfWeek:
		return float64((int(ts.Weekday()) + 6) % 7)
	case schema.UnitMonth:
		return float64(int(ts.Month()))
	case schema.UnitYear:
		return float64(ts.Year())
	}
	return 0
}

// timestampLayouts are accepted request timestamp forms: RFC 3339, the same
// without zone, and the HTML datetime-local form without seconds.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a request timestamp string.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp(s)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp(s)
}

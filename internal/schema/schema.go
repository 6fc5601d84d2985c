// Package schema holds the per-model feature schemas consumed at serving
// time. A schema is the ordered, named list of features a model was trained
// on; it is parsed once at startup from the model configuration and never
// mutated afterwards. Feature names keep their trained spelling (e.g.
// "Voltage_lag1"), so the configured schema is the single source of truth
// for both slot order and transform rules.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Transform identifies how a feature slot is derived from a raw observation.
type Transform int

const (
	// TransformIdentity copies a raw field verbatim.
	TransformIdentity Transform = iota
	// TransformLag fills the slot with the field's value as of Lag
	// observation steps before the prediction target.
	TransformLag
	// TransformTime derives the slot from the observation timestamp.
	TransformTime
)

// TimeUnit names a timestamp-derived feature source.
type TimeUnit string

const (
	UnitHour      TimeUnit = "hour_of_day"
	UnitDayOfWeek TimeUnit = "day_of_week"
	UnitMonth     TimeUnit = "month"
	UnitYear      TimeUnit = "year"
)

// Feature is one slot of a schema.
type Feature struct {
	// Name is the trained feature name, e.g. "Global_reactive_power_lag1".
	Name string
	// Source is the raw observation field the slot reads from. Empty for
	// timestamp-derived features.
	Source string
	Transform Transform
	// Lag is the step offset encoded in the name (0 when absent).
	Lag int
	// Unit is set for TransformTime features.
	Unit TimeUnit
}

// Schema is the ordered feature list for one model.
type Schema struct {
	ModelID  string
	Features []Feature
}

// Len returns the number of feature slots.
func (s *Schema) Len() int { return len(s.Features) }

// Names returns the trained feature names in slot order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Features))
	for i, f := range s.Features {
		out[i] = f.Name
	}
	return out
}

// Parse builds a Schema from trained feature names. The grammar is closed:
// an optional "_lagK" suffix, and a base that is either a timestamp unit
// (hour_of_day, day_of_week, month, year) or a raw sensor field name.
// Only lag 1 is servable from a single observation; higher lags are rejected
// here rather than silently mis-served.
func Parse(modelID string, names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("model %q: empty feature list", modelID)
	}
	s := &Schema{ModelID: modelID, Features: make([]Feature, 0, len(names))}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("model %q: duplicate feature %q", modelID, name)
		}
		seen[name] = struct{}{}
		f, err := parseFeature(name)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", modelID, err)
		}
		s.Features = append(s.Features, f)
	}
	return s, nil
}

func parseFeature(name string) (Feature, error) {
	if name == "" {
		return Feature{}, fmt.Errorf("empty feature name")
	}
	base, lag, err := splitLag(name)
	if err != nil {
		return Feature{}, err
	}
	if lag > 1 {
		return Feature{}, fmt.Errorf("feature %q: lag %d is not servable from a single observation", name, lag)
	}
	f := Feature{Name: name, Lag: lag}
	switch TimeUnit(base) {
	case UnitHour, UnitDayOfWeek, UnitMonth, UnitYear:
		f.Transform = TransformTime
		f.Unit = TimeUnit(base)
	default:
		f.Source = base
		if lag > 0 {
			f.Transform = TransformLag
		} else {
			f.Transform = TransformIdentity
		}
	}
	return f, nil
}

// splitLag splits a trailing "_lagK" suffix off a feature name.
func splitLag(name string) (base string, lag int, err error) {
	idx := strings.LastIndex(name, "_lag")
	if idx < 0 {
		return name, 0, nil
	}
	suffix := name[idx+len("_lag"):]
	if suffix == "" {
		return "", 0, fmt.Errorf("feature %q: malformed lag suffix", name)
	}
	n, convErr := strconv.Atoi(suffix)
	if convErr != nil || n < 1 {
		return "", 0, fmt.Errorf("feature %q: malformed lag suffix", name)
	}
	base = name[:idx]
	if base == "" {
		return "", 0, fmt.Errorf("feature %q: missing base name", name)
	}
	return base, n, nil
}

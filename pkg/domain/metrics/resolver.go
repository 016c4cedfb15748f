// Package metrics resolves a single metric value out of a set of
// heterogeneous Garmin Connect payloads. The same logical metric (duration,
// HRV, resting heart rate, sleep duration) shows up under different keys,
// nesting depths and shapes depending on which endpoint answered; callers
// describe where to look as an ordered candidate list and the resolver
// returns the first acceptable value together with the label of the field
// that supplied it.
package metrics

import "strings"

// SourceNone is the source label returned when no candidate matched.
const SourceNone = "none"

// Candidate is one place a metric value might live.
type Candidate struct {
	// Payload is the raw upstream response: a decoded JSON object
	// (map[string]any) or a bare scalar. Nil payloads are skipped.
	Payload any

	// Path is the key path to follow inside Payload. An empty path means
	// Payload itself is the value.
	Path []string

	// InnerKeys are tried, in order, when the value at Path is an object
	// instead of a number (e.g. a duration that arrives as
	// {"totalSeconds": 45} on some API versions).
	InnerKeys []string

	// Label overrides the source label for this candidate. When empty the
	// dotted join of Path is used. Needed when the payload is a
	// sub-object of a larger response and the label should name the full
	// path (e.g. "details.duration").
	Label string
}

// Extraction is the outcome of a priority cascade.
type Extraction struct {
	Value  float64
	Source string
	Found  bool
}

// Resolve walks candidates in order and returns the first acceptable value.
// Order encodes priority. A value is acceptable when it is numeric and
// strictly positive: zero and negative readings are treated as absent, not
// as valid zero-duration/zero-HRV values. Malformed shapes (wrong types,
// missing keys) count as absent, never as errors.
func Resolve(candidates []Candidate) Extraction {
	for _, c := range candidates {
		if v, src, ok := c.extract(); ok {
			return Extraction{Value: v, Source: src, Found: true}
		}
	}
	return Extraction{Source: SourceNone}
}

func (c Candidate) extract() (float64, string, bool) {
	val, ok := Lookup(c.Payload, c.Path...)
	if !ok {
		return 0, "", false
	}

	label := c.Label
	if label == "" {
		label = strings.Join(c.Path, ".")
	}

	if v, ok := asPositiveNumber(val); ok {
		return v, label, true
	}

	// Object-shaped value under a scalar path: descend one level using the
	// metric-specific inner keys.
	if inner, ok := val.(map[string]any); ok {
		for _, key := range c.InnerKeys {
			if v, ok := asPositiveNumber(inner[key]); ok {
				return v, label + "." + key, true
			}
		}
	}

	return 0, "", false
}

// Lookup retrieves the value at path inside payload, tolerating type
// mismatches anywhere along the way. An empty path returns the payload
// itself. The second return is false when any step is missing or the
// traversed value is not an object.
func Lookup(payload any, path ...string) (any, bool) {
	if isNil(payload) {
		return nil, false
	}
	cur := payload
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok || m == nil {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	if isNil(cur) {
		return nil, false
	}
	return cur, true
}

// isNil reports whether v is nil, including a nil map stored in an
// interface value.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	if m, ok := v.(map[string]any); ok {
		return m == nil
	}
	return false
}

// asPositiveNumber converts the common JSON/Go numeric representations.
// Strictly positive only: the zero-is-absent policy lives here.
func asPositiveNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if f <= 0 {
		return 0, false
	}
	return f, true
}

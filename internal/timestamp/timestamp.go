// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package timestamp converts the many time representations found in Zoom
// webhook payloads into a single UTC instant.
package timestamp

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// SecondsThreshold splits epoch numbers into seconds (below) and
// milliseconds (at or above). Zoom uses both depending on the event family.
const SecondsThreshold = 10_000_000_000

// maxEpochMillis is the largest instant accepted, 100 million days either
// side of the epoch.
const maxEpochMillis = 8.64e15

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// Normalize converts v into a UTC instant. The second return value is false
// when v is absent or cannot be interpreted; it never fails otherwise.
func Normalize(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return fromTime(t)
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return fromTime(*t)
	case string:
		return fromString(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return FromEpoch(f)
	case float64:
		return FromEpoch(t)
	case float32:
		return FromEpoch(float64(t))
	case int:
		return FromEpoch(float64(t))
	case int32:
		return FromEpoch(float64(t))
	case int64:
		return FromEpoch(float64(t))
	case uint:
		return FromEpoch(float64(t))
	case uint32:
		return FromEpoch(float64(t))
	case uint64:
		return FromEpoch(float64(t))
	}
	return time.Time{}, false
}

// NormalizePtr is Normalize returning nil for absent values.
func NormalizePtr(v any) *time.Time {
	t, ok := Normalize(v)
	if !ok {
		return nil
	}
	return &t
}

// First returns the first value that normalizes to an instant.
func First(values ...any) *time.Time {
	for _, v := range values {
		if t := NormalizePtr(v); t != nil {
			return t
		}
	}
	return nil
}

// FromEpoch interprets n as epoch seconds or milliseconds using SecondsThreshold.
func FromEpoch(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}

	millis := n
	if n < SecondsThreshold {
		millis = n * 1000
	}
	if math.Abs(millis) > maxEpochMillis {
		return time.Time{}, false
	}

	return time.UnixMilli(int64(math.Trunc(millis))).UTC(), true
}

func fromTime(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package payload reads optional fields out of loosely typed webhook bodies.
// Every accessor degrades to "absent" instead of failing.
package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Lookup walks nested maps along path and returns the value found at the end.
func Lookup(m map[string]any, path ...string) (any, bool) {
	var current any = m
	for _, key := range path {
		node, ok := Map(current)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// Map returns v as a JSON object.
func Map(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// MapAt returns the object at path, or nil when any step is missing.
func MapAt(m map[string]any, path ...string) map[string]any {
	v, ok := Lookup(m, path...)
	if !ok {
		return nil
	}
	node, _ := Map(v)
	return node
}

// Slice returns v as a JSON array.
func Slice(v any) []any {
	s, _ := v.([]any)
	return s
}

// String returns a trimmed non-empty string value.
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// StringAt returns the string at path.
func StringAt(m map[string]any, path ...string) (string, bool) {
	v, ok := Lookup(m, path...)
	if !ok {
		return "", false
	}
	return String(v)
}

// ID stringifies an external identifier. Zoom sends meeting ids as JSON
// numbers on some event families and as strings on others.
func ID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return String(id)
	case json.Number:
		return String(id.String())
	case float64:
		if math.IsNaN(id) || math.IsInf(id, 0) {
			return "", false
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case uint64:
		return strconv.FormatUint(id, 10), true
	}
	return "", false
}

// IDAt returns the stringified identifier at path.
func IDAt(m map[string]any, path ...string) (string, bool) {
	v, ok := Lookup(m, path...)
	if !ok {
		return "", false
	}
	return ID(v)
}

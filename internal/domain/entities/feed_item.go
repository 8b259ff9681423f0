package entities

import (
	"strconv"
	"strings"
)

// RawFeedItem is one record of a live public-data feed, keyed by the feed's own
// field names. Values are kept as raw text; typed accessors degrade instead of failing.
type RawFeedItem map[string]string

// Lookup returns the trimmed value for key and whether it is present and non-empty
func (i RawFeedItem) Lookup(key string) (string, bool) {
	v, ok := i[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// String returns the trimmed value for key, or "" when absent
func (i RawFeedItem) String(key string) string {
	v, _ := i.Lookup(key)
	return v
}

// IntOr parses key as an integer, returning def when absent or malformed
func (i RawFeedItem) IntOr(key string, def int) int {
	v, ok := i.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Float parses key as a float
func (i RawFeedItem) Float(key string) (float64, bool) {
	v, ok := i.Lookup(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

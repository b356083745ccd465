package main

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Document is a single record of the posts collection. Records are schemaless
// on the storage side; the pipeline is what enforces field rules before a
// document ever reaches a Store.
type Document = map[string]interface{}

// Post - wire model of a post, used for API documentation
type Post struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
	UserID int64  `json:"userId"`
}

// asInt64 reports whether v represents an integer and returns it coerced.
// JSON numbers arrive as float64, mongo hands back int32/int64, and clients
// may send integer-valued strings like "5".
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// asFloat64 coerces anything numeric, including numeric strings. Used by the
// id allocator, which tolerates whatever ids older records accumulated.
func asFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// isIntegralNumber is stricter than asInt64: only genuine JSON numbers with an
// integral value pass. The userId field rejects numeric strings while id
// accepts them.
func isIntegralNumber(v interface{}) bool {
	switch n := v.(type) {
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)
	case int64, int, int32:
		return true
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

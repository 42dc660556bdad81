package core

import (
	"fmt"
	"strconv"
)

// Record is one parsed XML element: tag name (prefix_local) to value.
//
// A value is nil, a scalar (string, int or bool), a nested Record, or a
// []any of those when the child tag repeats.
type Record map[string]any

// String returns the value under key formatted as a string.
// Missing and nil values yield "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value under key as an int, or 0 when it is not numeric.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Records returns the nested records under key, flattening the
// single-occurrence collapse so callers always get a slice.
func (r Record) Records(key string) []Record {
	switch v := r[key].(type) {
	case Record:
		return []Record{v}
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			if rec, ok := item.(Record); ok {
				out = append(out, rec)
			}
		}
		return out
	default:
		return nil
	}
}

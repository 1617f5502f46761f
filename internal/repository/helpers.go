package repository

import (
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// recordMap unwraps a SurrealDB record into a field map
func recordMap(result interface{}) (map[string]interface{}, bool) {
	m, ok := result.(map[string]interface{})
	return m, ok
}

// statementResult returns the result array of the n-th statement of a
// multi-statement SurrealDB response
func statementResult(results []interface{}, n int) []interface{} {
	if n < 0 || n >= len(results) {
		return nil
	}
	if resp, ok := results[n].(map[string]interface{}); ok {
		if arr, ok := resp["result"].([]interface{}); ok {
			return arr
		}
	}
	return nil
}

// extractCount extracts count from a `SELECT count() AS total ... GROUP ALL`
// statement result
func extractCount(rows []interface{}) int64 {
	if len(rows) == 0 {
		return 0
	}
	if data, ok := rows[0].(map[string]interface{}); ok {
		return getInt64(data, "total")
	}
	return 0
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getStringPtr extracts an optional string value from a map
func getStringPtr(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// getInt64 extracts an integer value from a map. JSON decoding yields
// float64; CBOR yields the sized integer types.
func getInt64(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case uint64:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	}
	return 0
}

// parseTime parses time from various formats
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// noneIfNil passes optional strings to SurrealDB as NULL or their value
func noneIfNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// surrealOrder maps a sort column onto its SurrealDB field name
func surrealOrder(sort string) string {
	if sort == "id" {
		return "num"
	}
	return sort
}

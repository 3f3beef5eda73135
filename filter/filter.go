// Package filter narrows an already loaded page of records by a free-text
// query. Matching is case-insensitive substring over dot-path fields of the
// record's JSON shape. A record matches when any field matches.
package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Searchable fields per resource.
var (
	KeyFields     = []string{"code", "key_type.name", "state", "client.name", "permissions.name"}
	ClientFields  = []string{"name", "email", "phone"}
	BatchFields   = []string{"title", "description"}
	KeyTypeFields = []string{"name", "description"}
	LoginFields   = []string{"ip", "computer_info.computer_name", "computer_info.os"}
)

// Filter returns the records matching query in input order. The query is
// matched as typed, whitespace included. An empty query returns records
// unchanged. records is never modified.
func Filter[T any](records []T, query string, fields []string) []T {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	paths := make([][]string, len(fields))
	for i, f := range fields {
		paths[i] = strings.Split(f, ".")
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if Match(r, q, paths) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether record matches the lowercase query on any path.
func Match(record any, lowerQuery string, paths [][]string) bool {
	doc, err := toDocument(record)
	if err != nil {
		return false
	}
	for _, p := range paths {
		if matchPath(doc, p, lowerQuery) {
			return true
		}
	}
	return false
}

func toDocument(record any) (any, error) {
	if m, ok := record.(map[string]any); ok {
		return m, nil
	}
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matchPath(node any, path []string, q string) bool {
	if arr, ok := node.([]any); ok {
		for _, el := range arr {
			if matchPath(el, path, q) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		s, ok := stringify(node)
		return ok && strings.Contains(strings.ToLower(s), q)
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return false
	}
	next, ok := obj[path[0]]
	if !ok {
		return false
	}
	return matchPath(next, path[1:], q)
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case map[string]any:
		return "", false
	}
	return fmt.Sprint(v), true
}

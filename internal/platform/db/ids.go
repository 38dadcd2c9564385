package db

import "github.com/google/uuid"

// ID returns the canonical form of a uuid key, or false when value cannot
// name a row. Stores compare with `col = $1::uuid` and skip the query for
// malformed ids.
func ID(value string) (string, bool) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// IDs keeps the well-formed ids of values in canonical form.
func IDs(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if id, ok := ID(value); ok {
			out = append(out, id)
		}
	}
	return out
}

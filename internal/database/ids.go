package database

import "github.com/google/uuid"

// ValidID reports whether id can be compared against a UUID column.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// ValidIDs drops ids that would make Postgres reject the whole query.
func ValidIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if ValidID(id) {
			out = append(out, id)
		}
	}
	return out
}

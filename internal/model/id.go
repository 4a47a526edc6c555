package model

import "github.com/oklog/ulid/v2"

// NewID returns a fresh ULID string in canonical form.
func NewID() string {
	return ulid.Make().String()
}

// CanonicalID parses id as a ULID and returns its canonical string.
// Returns false if id is not a valid ULID.
func CanonicalID(id string) (string, bool) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

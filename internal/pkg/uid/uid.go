// Package uid generates correlation identifiers for requests and consumed messages.
package uid

import "github.com/google/uuid"

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// UUID generates time-ordered UUIDv7 strings so correlation IDs sort by creation time.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate falls back to a random UUIDv4 if the v7 clock sequence cannot be read.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}

	return uuid.NewString()
}

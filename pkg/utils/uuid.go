package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewRequestID returns an id for correlating a request's log lines
func NewRequestID() string {
	return uuid.NewString()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// FormImageName is the object name a flattened form is stored under
func FormImageName(kind string, formID uuid.UUID) string {
	return "forms/" + kind + "/" + formID.String() + ".png"
}

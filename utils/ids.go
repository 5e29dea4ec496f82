package utils

import (
	"time"

	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// Now returns the server-assigned timestamp for new records. Bid, comment
// and listing times are never client-supplied.
func Now() time.Time {
	return time.Now().UTC()
}

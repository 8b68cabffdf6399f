package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a prefixed unique id, e.g. "auction-3f2a...".
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

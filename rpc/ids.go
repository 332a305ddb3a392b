package rpc

import (
	"strings"

	"github.com/google/uuid"
)

// newRequestID returns a fresh lowercased UUID string, the primary
// key PendingRequest uses (spec's PendingRequest definition).
func newRequestID() string {
	return strings.ToLower(uuid.NewString())
}

package util

import "github.com/google/uuid"

// NewID returns a random UUID string used for account and material IDs.
func NewID() string {
	return uuid.NewString()
}

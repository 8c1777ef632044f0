package platform

import "github.com/google/uuid"

// NewID returns a random UUID string.
func NewID() string {
	return uuid.New().String()
}

// StableID returns a name-based UUID for key. The same key always yields
// the same id.
func StableID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

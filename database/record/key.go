package record

import (
	"regexp"
	"strings"

	"github.com/gofrs/uuid"
)

const keySeparator = "/"

var storageNameConstraint = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidStorageName returns whether the given name may be used as a storage name.
func ValidStorageName(name string) bool {
	return storageNameConstraint.MatchString(name)
}

// NewKey returns a new, unique key within the given storage.
func NewKey(storageName string) string {
	return storageName + keySeparator + uuid.Must(uuid.NewV4()).String()
}

// ParseKey splits a key into its storage name and ID.
func ParseKey(key string) (storageName, id string) {
	splitted := strings.SplitN(key, keySeparator, 2)
	if len(splitted) < 2 {
		return splitted[0], ""
	}
	return splitted[0], splitted[1]
}

// KeyPrefix returns the prefix shared by all keys of the given storage.
func KeyPrefix(storageName string) string {
	return storageName + keySeparator
}

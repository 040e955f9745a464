package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/safing/portstore/utils"
)

const (
	databasesSubDir = "databases"
	defaultRootName = "portstore"
	dirPermission   = 0o700
)

// DefaultDataRoot returns the data root used when Options.DataRoot is empty.
func DefaultDataRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config dir: %w", err)
	}
	return filepath.Join(configDir, defaultRootName), nil
}

// StoreLocation returns the directory of a store: <root>/databases/<store>/<storage type>.
func StoreLocation(root, storeName, storageType string) string {
	return filepath.Join(root, databasesSubDir, storeName, storageType)
}

// getLocation returns the storage location for the given options and ensures it exists.
func getLocation(opts *Options) (string, error) {
	if opts.InMemory {
		return "", nil
	}

	root := opts.DataRoot
	if root == "" {
		var err error
		root, err = DefaultDataRoot()
		if err != nil {
			return "", err
		}
	}

	location := StoreLocation(root, opts.StoreName, opts.StorageType)
	if err := utils.EnsureDirectory(location, dirPermission); err != nil {
		return "", fmt.Errorf("location (%s) invalid: %w", location, err)
	}
	return location, nil
}

package vsh

import "io"

// Vault stores exported snapshot blobs under slash-separated keys such as
// "snapshots/work.toml.age".
type Vault interface {
	// Put stores size bytes read from r under key, replacing any previous blob.
	Put(key string, r io.Reader, size int64) error

	// Get writes the blob stored under key to w. It returns ErrBlobNotFound
	// when there is none.
	Get(key string, w io.Writer) error

	// Exists reports whether a blob is stored under key.
	Exists(key string) (bool, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}

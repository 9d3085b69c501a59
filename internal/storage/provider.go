// Package storage defines the import folder file-system abstraction.
package storage

import "time"

// FileInfo describes one file found by List.
type FileInfo struct {
	Path     string    // relative to the provider root
	Checksum string    // hex SHA-256 of the content
	Size     int64
	ModTime  time.Time
}

// Provider is the interface for import folder file operations.
type Provider interface {
	// List returns the files directly inside dir whose name ends in ext.
	// Subdirectories are not descended into.
	List(dir, ext string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Move renames oldPath to newPath (both relative to root). It fails
	// with an error wrapping fs.ErrExist when newPath already exists.
	Move(oldPath, newPath string) error
}

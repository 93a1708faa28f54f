// Package storage defines the export directory abstraction.
package storage

import "github.com/starford/deckwright/internal/models"

// Provider is the interface for export file operations.
type Provider interface {
	// List returns metadata for every .txt export under dir (relative to the root).
	List(dir string) ([]models.ExportMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the root).
	Delete(path string) error
}

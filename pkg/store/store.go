// Package store persists small preference records under string keys.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Store is a flat key-value preference store. Values are opaque bytes; the
// prefs layer writes JSON.
type Store interface {
	// Get returns the value under key; ok is false when the key was never set.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// Type names a backend.
type Type string

const (
	TypeMemory Type = "memory"
	TypeFile   Type = "file"
	TypeSQLite Type = "sqlite"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Config selects and configures a backend.
type Config struct {
	Type Type
	// Path is the JSON document for the file backend or the database file for
	// sqlite. An empty sqlite path opens a private in-memory database.
	Path   string
	Logger zerolog.Logger
}

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(s)); t {
	case TypeMemory, TypeFile, TypeSQLite:
		return t, nil
	case "":
		return TypeFile, nil
	}
	return "", fmt.Errorf("unknown store type %q (want file, sqlite or memory)", s)
}

// Open creates the backend named by cfg.Type.
func Open(cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeMemory:
		return NewMemory(), nil
	case TypeFile, "":
		if cfg.Path == "" {
			return nil, errors.New("file store needs a path")
		}
		return OpenFile(cfg.Path)
	case TypeSQLite:
		return OpenSQLite(cfg.Path, cfg.Logger)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

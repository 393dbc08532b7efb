// Package backend provides the blob stores a prefs.Store persists into:
// an in-memory map, a JSON file, a SQLite database, a DynamoDB table and,
// on macOS, the user defaults system.
package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kalambet/prefs/internal/prefs"
)

// ErrUnknownBackend is returned by Open for an unsupported kind.
var ErrUnknownBackend = errors.New("unknown backend")

// Kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindDynamo   = "dynamodb"
	KindDefaults = "defaults"
)

type openOptions struct {
	dynamo DynamoOptions
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithDynamo sets the table options used for KindDynamo.
func WithDynamo(o DynamoOptions) OpenOption {
	return func(oo *openOptions) { oo.dynamo = o }
}

// Open returns the backend of the given kind rooted at dataDir.
func Open(kind, dataDir string, opts ...OpenOption) (prefs.Backend, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		b   prefs.Backend
		err error
	)
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindFile:
		b, err = OpenFile(filepath.Join(dataDir, "prefs.json"))
	case KindSQLite:
		b, err = OpenSQLite(dataDir)
	case KindDynamo:
		b, err = OpenDynamo(context.Background(), o.dynamo)
	case KindDefaults:
		return openDefaults()
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s, %s, %s, %s, %s)", ErrUnknownBackend, kind, KindMemory, KindFile, KindSQLite, KindDynamo, KindDefaults)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

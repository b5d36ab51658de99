// Package storage keeps the outcome history of verification scenarios so a
// run can report which scenarios changed since the previous one.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store remembers the last outcome recorded per scenario.
type Store interface {
	Close() error
	LastOutcome(id string) (string, bool, error)
	RecordOutcome(id, outcome string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	OutcomeTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultOutcomeTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 24 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.OutcomeTTL <= 0 {
		opts.OutcomeTTL = defaultOutcomeTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                             { return nil }
func (noopStore) LastOutcome(string) (string, bool, error) { return "", false, nil }
func (noopStore) RecordOutcome(string, string) error       { return nil }

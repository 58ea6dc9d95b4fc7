package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/moku-rest-client/internal/domain"
)

// Package storage archives oscilloscope captures locally.

// Store persists captured frames.
type Store interface {
	Close() error
	SaveCapture(c domain.Capture) error
	Capture(id string) (domain.Capture, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	CaptureTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultCaptureTTL      = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
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
	if opts.CaptureTTL <= 0 {
		opts.CaptureTTL = defaultCaptureTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) SaveCapture(domain.Capture) error { return nil }
func (noopStore) Capture(string) (domain.Capture, bool, error) {
	return domain.Capture{}, false, nil
}

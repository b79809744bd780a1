package mockldap

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getmockd/mockldap/pkg/logging"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Default seeds connections for URIs with no SetDirectory entry. Leaving
	// it nil makes connecting to an unseeded URI fail with
	// ErrNoDefaultContent; an empty non-nil Content seeds an empty directory.
	Default Content

	// Logger receives lifecycle and operation logs at debug level. Defaults
	// to a no-op logger.
	Logger *slog.Logger
}

// Registry hands out one simulated connection per URI. It stands in for
// whatever factory the code under test uses to open connections: install
// it with Start, inject ConnectFunc, and every connection the code opens
// is a Conn seeded from the configured content.
//
// Interception points are named so layered fixtures can install the same
// registry from several places; the connection table lives from the first
// Start to the last Stop. Deactivating discards all connections, so each
// activation cycle begins from pristine seed content.
type Registry struct {
	log *slog.Logger

	mu          sync.RWMutex
	defaultSeed Content
	seeds       map[string]Content
	points      map[string]struct{}
	conns       map[string]*Conn
}

// NewRegistry creates a registry. Seed content is copied when a connection
// is created, not at registration, so fixture maps can be built
// incrementally up to the first Connect.
func NewRegistry(cfg RegistryConfig) *Registry {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{
		log:         log,
		defaultSeed: cfg.Default,
		seeds:       make(map[string]Content),
		points:      make(map[string]struct{}),
	}
}

// SetDirectory seeds connections for one specific URI, overriding the
// default content. Connections already created for the URI are unaffected;
// the seed applies from the next time the URI's Conn is (re)created.
func (r *Registry) SetDirectory(uri string, content Content) {
	r.mu.Lock()
	r.seeds[uri] = content
	r.mu.Unlock()
}

// Start installs a named interception point. The first installed point
// activates the registry; installing the same name twice fails with
// ErrAlreadyStarted.
func (r *Registry) Start(point string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.points[point]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyStarted, point)
	}
	r.points[point] = struct{}{}
	if r.conns == nil {
		r.conns = make(map[string]*Conn)
	}
	r.log.Debug("interception point installed", "point", point, "installed", len(r.points))
	return nil
}

// Stop removes a named interception point. Removing a point that is not
// installed fails with ErrNotInstalled. When the last point goes, every
// connection is discarded; a later Start begins a fresh cycle.
func (r *Registry) Stop(point string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.points[point]; !ok {
		return fmt.Errorf("%w: %q", ErrNotInstalled, point)
	}
	delete(r.points, point)
	r.log.Debug("interception point removed", "point", point, "installed", len(r.points))
	if len(r.points) == 0 {
		r.conns = nil
		r.log.Debug("registry deactivated")
	}
	return nil
}

// StopAll removes every installed point and discards all connections.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for point := range r.points {
		delete(r.points, point)
	}
	r.conns = nil
	r.log.Debug("registry deactivated")
}

// Connect returns the connection for uri, creating it from the per-URI or
// default seed on first use. The connection records a Connect call, which
// is seedable like any operation, so a test can make connecting fail.
func (r *Registry) Connect(uri string) (*Conn, error) {
	conn, err := r.lookup(uri)
	if err != nil {
		return nil, err
	}
	if err := conn.recordConnect(uri); err != nil {
		return nil, err
	}
	return conn, nil
}

// Get is Connect without the recorded call, for assertions that must not
// disturb the call log.
func (r *Registry) Get(uri string) (*Conn, error) {
	return r.lookup(uri)
}

// ConnectFunc returns a factory bound to this registry, the shape code
// under test should accept instead of dialing on its own.
func (r *Registry) ConnectFunc() func(uri string) (*Conn, error) {
	return r.Connect
}

func (r *Registry) lookup(uri string) (*Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns == nil {
		return nil, fmt.Errorf("connect %q: %w", uri, ErrNotStarted)
	}
	if conn, ok := r.conns[uri]; ok {
		return conn, nil
	}

	seed, ok := r.seeds[uri]
	if !ok {
		if r.defaultSeed == nil {
			return nil, fmt.Errorf("connect %q: %w", uri, ErrNoDefaultContent)
		}
		seed = r.defaultSeed
	}
	conn, err := newConn(uri, seed, r.log)
	if err != nil {
		return nil, err
	}
	r.conns[uri] = conn
	return conn, nil
}

package mockldap

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"

	"github.com/getmockd/mockldap/pkg/directory"
	"github.com/getmockd/mockldap/pkg/logging"
	"github.com/getmockd/mockldap/pkg/recording"
)

// Content is the directory seed shape, re-exported from pkg/directory so
// most tests only need this package.
type Content = directory.Content

// Conn is a simulated LDAP connection. It owns a directory store seeded at
// construction, records every operation, and honors seeded return values
// registered through Seed.
//
// A Conn never touches the network. It is safe for use from parallel
// subtests sharing one fixture.
type Conn struct {
	id       string
	uri      string
	log      *slog.Logger
	store    *directory.Store
	recorder *recording.Recorder

	mu           sync.RWMutex
	boundAs      string
	tlsEnabled   bool
	options      map[string]any
	asyncResults []*ldap.SearchResult
}

// NewConn creates a standalone simulated connection seeded with content.
// Connections handed out by a Registry are built the same way.
func NewConn(content Content) (*Conn, error) {
	return newConn("", content, logging.Nop())
}

func newConn(uri string, content Content, log *slog.Logger) (*Conn, error) {
	store, err := directory.NewStore(content)
	if err != nil {
		return nil, err
	}
	c := &Conn{
		id:       uuid.New().String(),
		uri:      uri,
		log:      log,
		store:    store,
		recorder: recording.NewRecorder(),
		options:  make(map[string]any),
	}
	c.log.Debug("connection created", "id", c.id, "uri", uri, "entries", store.Len())
	return c, nil
}

// ID returns the opaque per-connection instance id.
func (c *Conn) ID() string {
	return c.id
}

// BoundAs returns the identity of the last successful bind, "" when
// unbound or bound anonymously.
func (c *Conn) BoundAs() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.boundAs
}

// TLSEnabled reports whether StartTLS has been called on this connection.
func (c *Conn) TLSEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tlsEnabled
}

// Directory returns the live store backing this connection. Mutating it
// changes what later operations see, which is the point: tests can tweak
// fixtures mid-flight without rebuilding the connection.
func (c *Conn) Directory() *directory.Store {
	return c.store
}

// Seed begins registering a canned return value for op invoked with
// exactly args. See the recording package for matching semantics.
func (c *Conn) Seed(op string, args ...any) *recording.Stub {
	return c.recorder.Seed(op, args...)
}

// Calls returns every recorded call with its arguments, oldest first.
func (c *Conn) Calls() []recording.Call {
	return c.recorder.Calls()
}

// CallNames returns the recorded operation names, oldest first.
func (c *Conn) CallNames() []string {
	return c.recorder.CallNames()
}

// Reset clears the call log and all seeds. Directory content is untouched.
func (c *Conn) Reset() {
	c.recorder.Reset()
}

// Unbind clears the bound identity. It is idempotent and recorded as its
// own operation.
func (c *Conn) Unbind() error {
	_, err := recordAs[any](c, "Unbind", []any{}, func() (any, error) {
		c.clearBound()
		return nil, nil
	})
	return err
}

// UnbindS behaves exactly like Unbind but records under its own name,
// mirroring the synchronous variant of the real client.
func (c *Conn) UnbindS() error {
	_, err := recordAs[any](c, "UnbindS", []any{}, func() (any, error) {
		c.clearBound()
		return nil, nil
	})
	return err
}

// StartTLS latches the TLS flag. There is no way to turn it back off,
// matching the one-way nature of the real operation.
func (c *Conn) StartTLS() error {
	_, err := recordAs[any](c, "StartTLS", []any{}, func() (any, error) {
		c.mu.Lock()
		c.tlsEnabled = true
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// SetOption stores an arbitrary option value verbatim.
func (c *Conn) SetOption(option string, value any) error {
	_, err := recordAs[any](c, "SetOption", []any{option, value}, func() (any, error) {
		c.mu.Lock()
		c.options[option] = value
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// GetOption returns a previously set option value verbatim. Reading an
// option that was never set fails with ErrOptionNotSet.
func (c *Conn) GetOption(option string) (any, error) {
	return recordAs[any](c, "GetOption", []any{option}, func() (any, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		value, ok := c.options[option]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrOptionNotSet, option)
		}
		return value, nil
	})
}

// recordConnect logs the registry handing this connection out. It is
// recorded and seedable like every other operation, so a test can make
// connecting itself fail.
func (c *Conn) recordConnect(uri string) error {
	_, err := recordAs[any](c, "Connect", []any{uri}, func() (any, error) {
		return nil, nil
	})
	return err
}

func (c *Conn) setBound(dn string) {
	c.mu.Lock()
	c.boundAs = dn
	c.mu.Unlock()
}

func (c *Conn) clearBound() {
	c.mu.Lock()
	c.boundAs = ""
	c.mu.Unlock()
}

// recordAs funnels one operation through the connection's recorder and
// narrows the result back to the operation's return type. Only seeded
// values can carry a foreign type; those yield a descriptive error rather
// than a panic.
func recordAs[T any](c *Conn, op string, args []any, fallback func() (T, error)) (T, error) {
	value, err := c.recorder.Invoke(op, args, func() (any, error) {
		v, err := fallback()
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	var zero T
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("seeded value for %s is %T, want %T", op, value, zero)
	}
	return typed, nil
}

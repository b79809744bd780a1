package testing

import (
	"log/slog"
	"os"
	"testing"

	"github.com/getmockd/mockldap/pkg/logging"
	"github.com/getmockd/mockldap/pkg/mockldap"
)

// interceptionPoint is the single point a helper-owned registry installs.
const interceptionPoint = "pkg/testing"

// MockLdap owns a connection registry for the duration of one test.
// It activates the registry on construction and tears everything down
// through t.Cleanup, so each test starts from pristine seed content.
type MockLdap struct {
	t        testing.TB
	registry *mockldap.Registry
}

// New creates an activated helper seeded with content. The registry is
// stopped automatically when the test finishes.
func New(t testing.TB, content mockldap.Content) *MockLdap {
	t.Helper()

	m := &MockLdap{
		t: t,
		registry: mockldap.NewRegistry(mockldap.RegistryConfig{
			Default: content,
			Logger:  testLogger(),
		}),
	}
	if err := m.registry.Start(interceptionPoint); err != nil {
		t.Fatalf("failed to activate registry: %v", err)
	}
	t.Cleanup(m.registry.StopAll)

	return m
}

// testLogger builds the helper's logger. Setting MOCKLDAP_TEST_LOG to a
// level name ("debug", "info", ...) surfaces the double's operation log in
// test output; otherwise the helper stays silent.
func testLogger() *slog.Logger {
	raw := os.Getenv("MOCKLDAP_TEST_LOG")
	if raw == "" {
		return logging.Nop()
	}
	return logging.NewWithLevel(logging.ParseLevel(raw))
}

// Registry returns the underlying registry for advanced use cases.
// Most tests should not need this.
func (m *MockLdap) Registry() *mockldap.Registry {
	return m.registry
}

// SetDirectory seeds content for one specific URI, overriding the default
// content for connections created after the call.
func (m *MockLdap) SetDirectory(uri string, content mockldap.Content) {
	m.registry.SetDirectory(uri, content)
}

// Connect returns the simulated connection for uri, creating it on first
// use and recording a Connect call. Failures fail the test.
func (m *MockLdap) Connect(uri string) *mockldap.Conn {
	m.t.Helper()

	conn, err := m.registry.Connect(uri)
	if err != nil {
		m.t.Fatalf("connect %s: %v", uri, err)
	}
	return conn
}

// Conn returns the connection for uri without recording a Connect call,
// for seeding and assertions that must not disturb the call log.
func (m *MockLdap) Conn(uri string) *mockldap.Conn {
	m.t.Helper()

	conn, err := m.registry.Get(uri)
	if err != nil {
		m.t.Fatalf("get connection %s: %v", uri, err)
	}
	return conn
}

// ConnectFunc returns the connection factory to inject into code under
// test in place of a real dialer.
func (m *MockLdap) ConnectFunc() func(uri string) (*mockldap.Conn, error) {
	return m.registry.ConnectFunc()
}

// AssertCalled asserts that op was invoked at least once on uri's
// connection.
func (m *MockLdap) AssertCalled(t testing.TB, uri, op string) {
	t.Helper()

	if count := m.countCalls(uri, op); count == 0 {
		t.Errorf("expected %s to be called on %s, but it was not called", op, uri)
	}
}

// AssertCalledTimes asserts that op was invoked exactly n times on uri's
// connection.
func (m *MockLdap) AssertCalledTimes(t testing.TB, uri, op string, times int) {
	t.Helper()

	if count := m.countCalls(uri, op); count != times {
		t.Errorf("expected %s to be called %d times on %s, but was called %d times",
			op, times, uri, count)
	}
}

// AssertNotCalled asserts that op was never invoked on uri's connection.
func (m *MockLdap) AssertNotCalled(t testing.TB, uri, op string) {
	t.Helper()

	if count := m.countCalls(uri, op); count > 0 {
		t.Errorf("expected %s to not be called on %s, but it was called %d times",
			op, uri, count)
	}
}

// AssertBoundAs asserts the current bind identity on uri's connection.
// Pass an empty dn to assert the connection is unbound.
func (m *MockLdap) AssertBoundAs(t testing.TB, uri, dn string) {
	t.Helper()

	conn, err := m.registry.Get(uri)
	if err != nil {
		t.Errorf("get connection %s: %v", uri, err)
		return
	}
	if bound := conn.BoundAs(); bound != dn {
		t.Errorf("bound identity mismatch on %s\nexpected: %q\nactual: %q", uri, dn, bound)
	}
}

// countCalls counts invocations of op on uri's connection. The lookup
// does not record, so assertions never pollute the call log.
func (m *MockLdap) countCalls(uri, op string) int {
	conn, err := m.registry.Get(uri)
	if err != nil {
		return 0
	}

	count := 0
	for _, name := range conn.CallNames() {
		if name == op {
			count++
		}
	}
	return count
}

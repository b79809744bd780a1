package testing

import (
	"context"
	"errors"
	"log/slog"
	stdtesting "testing"

	"github.com/getmockd/mockldap/pkg/mockldap"
)

func fixture() mockldap.Content {
	return NewDirectory().
		Entry("cn=alice,ou=people,o=acme").
		WithObjectClass("top", "inetOrgPerson").
		WithPassword("alicepw").
		Done().
		Entry("cn=bob,ou=people,o=acme").
		WithObjectClass("top").
		WithAttr("mail", "bob@acme.test").
		Done().
		Build()
}

func TestNew(t *stdtesting.T) {
	m := New(t, fixture())

	conn := m.Connect("ldap://localhost")
	if conn == nil {
		t.Fatal("expected a connection")
	}
	if got := conn.Directory().Len(); got != 2 {
		t.Errorf("expected 2 seeded entries, got %d", got)
	}

	res, err := conn.Bind("cn=alice,ou=people,o=acme", "alicepw")
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if res.Code != mockldap.BindResultCode {
		t.Errorf("expected bind result code %d, got %d", mockldap.BindResultCode, res.Code)
	}
}

func TestCleanupDeactivatesRegistry(t *stdtesting.T) {
	var registry *mockldap.Registry

	t.Run("helper scope", func(t *stdtesting.T) {
		m := New(t, fixture())
		registry = m.Registry()
		m.Connect("ldap://localhost")
	})

	_, err := registry.Connect("ldap://localhost")
	if !errors.Is(err, mockldap.ErrNotStarted) {
		t.Errorf("expected ErrNotStarted after cleanup, got %v", err)
	}
}

func TestConnDoesNotRecord(t *stdtesting.T) {
	m := New(t, fixture())

	conn := m.Conn("ldap://localhost")
	if got := len(conn.CallNames()); got != 0 {
		t.Errorf("expected no recorded calls, got %d", got)
	}

	same := m.Connect("ldap://localhost")
	if same != conn {
		t.Error("expected Connect to reuse the connection Conn created")
	}
	if got := len(conn.CallNames()); got != 1 {
		t.Errorf("expected one recorded call after Connect, got %d", got)
	}
}

func TestConnectFunc(t *stdtesting.T) {
	m := New(t, fixture())

	dial := m.ConnectFunc()
	conn, err := dial("ldap://injected")
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if conn != m.Conn("ldap://injected") {
		t.Error("expected the factory to share the registry's connections")
	}
}

func TestSetDirectory(t *stdtesting.T) {
	m := New(t, fixture())
	m.SetDirectory("ldap://special", mockldap.Content{
		"o=special": {"objectClass": {"top"}},
	})

	if got := m.Connect("ldap://special").Directory().Len(); got != 1 {
		t.Errorf("expected 1 entry from per-URI seed, got %d", got)
	}
	if got := m.Connect("ldap://other").Directory().Len(); got != 2 {
		t.Errorf("expected default seed for other URIs, got %d entries", got)
	}
}

func TestAssertions(t *stdtesting.T) {
	m := New(t, fixture())
	conn := m.Connect("ldap://localhost")

	if _, err := conn.Bind("cn=alice,ou=people,o=acme", "alicepw"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	if _, err := conn.Compare("cn=bob,ou=people,o=acme", "mail", "bob@acme.test"); err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	m.AssertCalled(t, "ldap://localhost", "Bind")
	m.AssertCalledTimes(t, "ldap://localhost", "Bind", 1)
	m.AssertCalledTimes(t, "ldap://localhost", "Connect", 1)
	m.AssertNotCalled(t, "ldap://localhost", "Del")
	m.AssertBoundAs(t, "ldap://localhost", "cn=alice,ou=people,o=acme")
}

// errorSpy captures assertion failures without failing the real test.
type errorSpy struct {
	stdtesting.TB
	failed bool
}

func (s *errorSpy) Errorf(string, ...any) { s.failed = true }
func (s *errorSpy) Helper()               {}

func TestAssertionFailures(t *stdtesting.T) {
	m := New(t, fixture())
	m.Connect("ldap://localhost")

	spy := &errorSpy{}
	m.AssertCalled(spy, "ldap://localhost", "Bind")
	if !spy.failed {
		t.Error("expected AssertCalled to fail for an operation never invoked")
	}

	spy = &errorSpy{}
	m.AssertNotCalled(spy, "ldap://localhost", "Connect")
	if !spy.failed {
		t.Error("expected AssertNotCalled to fail for a recorded operation")
	}

	spy = &errorSpy{}
	m.AssertBoundAs(spy, "ldap://localhost", "cn=nobody,o=acme")
	if !spy.failed {
		t.Error("expected AssertBoundAs to fail for an unbound connection")
	}
}

func TestDirectoryBuilder(t *stdtesting.T) {
	content := NewDirectory().
		Entry("cn=carol,o=acme").
		WithAttr("cn", "carol").
		WithPassword("{CLEARTEXT}carolpw").
		WithObjectClass("top", "person").
		Done().
		Build()

	attrs, ok := content["cn=carol,o=acme"]
	if !ok {
		t.Fatal("expected the built entry to be present")
	}
	if got := attrs["userPassword"][0]; got != "{CLEARTEXT}carolpw" {
		t.Errorf("unexpected password value %q", got)
	}
	if got := len(attrs["objectClass"]); got != 2 {
		t.Errorf("expected 2 object classes, got %d", got)
	}
}

func TestTestLoggerRespectsEnv(t *stdtesting.T) {
	t.Setenv("MOCKLDAP_TEST_LOG", "debug")
	if !testLogger().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug logging to be enabled")
	}

	t.Setenv("MOCKLDAP_TEST_LOG", "")
	if testLogger().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected the silent default without the env var")
	}
}

// Package testing provides a testing SDK for driving mockldap in Go tests.
//
// New activates a connection registry for the duration of one test and
// tears it down automatically, so every test starts from pristine seed
// content.
//
// # Basic Usage
//
// Build seed content, create the helper, and inject its connection
// factory into the code under test:
//
//	func TestLogin(t *testing.T) {
//	    directory := mocktest.NewDirectory().
//	        Entry("cn=alice,ou=people,o=acme").
//	        WithObjectClass("top", "inetOrgPerson").
//	        WithPassword("alicepw").
//	        Done().
//	        Build()
//
//	    ldap := mocktest.New(t, directory)
//	    svc := NewLoginService(ldap.ConnectFunc())
//
//	    err := svc.Login("ldap://directory", "alice", "alicepw")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//
//	    ldap.AssertCalled(t, "ldap://directory", "Bind")
//	    ldap.AssertBoundAs(t, "ldap://directory", "cn=alice,ou=people,o=acme")
//	}
//
// The package name collides with the standard library; import it under an
// alias such as mocktest.
//
// # Seeding Results
//
// Conn returns a connection without recording, for seeding canned results
// before the code under test connects:
//
//	ldap.Conn("ldap://directory").
//	    Seed("Bind", "cn=alice,ou=people,o=acme", "alicepw").
//	    Return(ldap3.NewError(ldap3.LDAPResultUnavailable, errors.New("down")))
//
// # Assertions
//
// Verify operations without disturbing the call log:
//
//	ldap.AssertCalled(t, uri, "Search")
//	ldap.AssertCalledTimes(t, uri, "Bind", 2)
//	ldap.AssertNotCalled(t, uri, "Del")
//
// Set MOCKLDAP_TEST_LOG to a level name ("debug", "info") to surface the
// double's operation log while a test runs.
package testing

// Package mockldap is an in-memory test double for LDAP client code.
//
// A Conn simulates a directory connection against seeded content: bind,
// search, compare, add, modify, rename, and delete behave like a real
// server for a useful subset of the protocol, including RFC 4515 equality
// and presence filters and hashed userPassword verification. Requests and
// results use the go-ldap types, and failures carry go-ldap result codes,
// so code under test cannot tell the difference.
//
// Every operation is recorded and can be overridden with a canned return
// value keyed by its exact arguments:
//
//	conn, _ := mockldap.NewConn(mockldap.Content{
//	    "cn=alice,ou=people,o=acme": {
//	        "objectClass":  {"inetOrgPerson"},
//	        "userPassword": {"alicepw"},
//	    },
//	})
//
//	res, err := conn.Bind("cn=alice,ou=people,o=acme", "alicepw")
//	// res.Code == 97, err == nil
//
//	conn.Seed("Bind", "cn=alice,ou=people,o=acme", "alicepw").
//	    Return(ldap.NewError(ldap.LDAPResultUnavailable, errors.New("down")))
//
// When the simulation cannot answer a request, typically a search with an
// unsupported filter operator, it fails with *recording.SeedRequired whose
// message quotes the exact call to seed.
//
// A Registry manages one Conn per connection URI for code that opens its
// own connections: install it for the duration of a test with Start/Stop
// and hand its ConnectFunc to the code under test.
package mockldap

package mockldap

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
)

func BenchmarkBind(b *testing.B) {
	conn, err := NewConn(testDirectory())
	if err != nil {
		b.Fatalf("new conn: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Bind("cn=alice,ou=example,o=test", "alicepw"); err != nil {
			b.Fatalf("bind failed: %v", err)
		}
	}
}

func BenchmarkSearchSubtree(b *testing.B) {
	conn, err := NewConn(testDirectory())
	if err != nil {
		b.Fatalf("new conn: %v", err)
	}
	req := searchRequest("ou=example,o=test", ldap.ScopeWholeSubtree, "(objectClass=posixAccount)")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Search(req); err != nil {
			b.Fatalf("search failed: %v", err)
		}
	}
}

package mockldap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/getmockd/mockldap/internal/password"
	"github.com/getmockd/mockldap/pkg/directory"
)

// Bind authenticates as dn. An empty dn with an empty password is the
// anonymous bind and always succeeds without touching the directory.
// Otherwise the bind succeeds iff the password matches one of the entry's
// userPassword values, either literally or through a supported hash scheme
// ({SHA}, {SSHA} and the longer digests, {CRYPT} md5-crypt); stored values
// in a form the simulation cannot verify are skipped.
//
// A dn with no entry fails with result code 32 (no such object), not 49:
// real servers distinguish an unknown identity from a wrong password, and
// tests get to assert on the difference.
func (c *Conn) Bind(dn, pass string) (*Result, error) {
	return recordAs(c, "Bind", []any{dn, pass}, func() (*Result, error) {
		return c.simulateBind(dn, pass)
	})
}

func (c *Conn) simulateBind(dn, pass string) (*Result, error) {
	if dn == "" && pass == "" {
		c.setBound("")
		c.log.Debug("anonymous bind", "id", c.id)
		return &Result{Code: BindResultCode}, nil
	}

	if err := directory.CheckDN(dn); err != nil {
		return nil, err
	}
	entry, ok := c.store.Get(dn)
	if !ok {
		return nil, noSuchObject(dn)
	}

	values, _ := entry.Attrs.Get("userPassword")
	for _, stored := range values {
		if password.Match(pass, stored) {
			c.setBound(dn)
			c.log.Debug("bind succeeded", "id", c.id, "dn", dn)
			return &Result{Code: BindResultCode}, nil
		}
	}
	c.log.Debug("bind rejected", "id", c.id, "dn", dn)
	return nil, ldap.NewError(ldap.LDAPResultInvalidCredentials, fmt.Errorf("invalid credentials for %q", dn))
}

// Compare reports whether the entry at dn carries value for attr: 1 when
// it does, 0 when it does not. When attr is userPassword, hashed values
// verify the same way Bind verifies them.
func (c *Conn) Compare(dn, attr, value string) (int, error) {
	return recordAs(c, "Compare", []any{dn, attr, value}, func() (int, error) {
		return c.simulateCompare(dn, attr, value)
	})
}

func (c *Conn) simulateCompare(dn, attr, value string) (int, error) {
	if err := directory.CheckDN(dn); err != nil {
		return 0, err
	}
	entry, ok := c.store.Get(dn)
	if !ok {
		return 0, noSuchObject(dn)
	}
	stored, ok := entry.Attrs.Get(attr)
	if !ok {
		return 0, undefinedType(attr)
	}

	if strings.EqualFold(attr, "userPassword") {
		for _, s := range stored {
			if password.Match(value, s) {
				return 1, nil
			}
		}
		return 0, nil
	}
	if slices.Contains(stored, value) {
		return 1, nil
	}
	return 0, nil
}

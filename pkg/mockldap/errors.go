package mockldap

import (
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"

	"github.com/getmockd/mockldap/internal/filter"
)

// Registry and connection errors.
var (
	ErrNotStarted       = errors.New("registry not started")
	ErrAlreadyStarted   = errors.New("interception point already installed")
	ErrNotInstalled     = errors.New("interception point not installed")
	ErrNoDefaultContent = errors.New("no default directory content configured")
	ErrOptionNotSet     = errors.New("option not set")
)

// ErrUnsupportedFilter marks a syntactically valid filter that uses an
// operator or wildcard the simulation does not implement. It reaches the
// caller wrapped in *recording.SeedRequired, inviting a seeded result
// rather than reporting a failure.
var ErrUnsupportedFilter = filter.ErrUnsupported

func noSuchObject(dn string) error {
	return ldap.NewError(ldap.LDAPResultNoSuchObject, fmt.Errorf("no such entry %q", dn))
}

func undefinedType(attr string) error {
	return ldap.NewError(ldap.LDAPResultUndefinedAttributeType, fmt.Errorf("no such attribute %q", attr))
}

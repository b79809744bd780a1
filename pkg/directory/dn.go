package directory

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// canonicalEscaper re-escapes the separator characters inside a decoded RDN
// value so that joining components back into a single key stays injective.
var canonicalEscaper = strings.NewReplacer(
	`\`, `\5c`,
	`,`, `\2c`,
	`+`, `\2b`,
	`=`, `\3d`,
)

// CheckDN validates dn syntactically. A malformed DN yields an *ldap.Error
// with result code 34 (invalid DN syntax).
func CheckDN(dn string) error {
	if _, err := ldap.ParseDN(dn); err != nil {
		return ldap.NewError(ldap.LDAPResultInvalidDNSyntax, fmt.Errorf("invalid dn %q: %v", dn, err))
	}
	return nil
}

// components parses dn and returns one canonical string per RDN: attribute
// types and values lower-cased, multi-valued RDNs joined with "+" in their
// original order.
func components(dn string) ([]string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return nil, ldap.NewError(ldap.LDAPResultInvalidDNSyntax, fmt.Errorf("invalid dn %q: %v", dn, err))
	}
	comps := make([]string, 0, len(parsed.RDNs))
	for _, rdn := range parsed.RDNs {
		parts := make([]string, 0, len(rdn.Attributes))
		for _, attr := range rdn.Attributes {
			typ := strings.ToLower(attr.Type)
			val := canonicalEscaper.Replace(strings.ToLower(attr.Value))
			parts = append(parts, typ+"="+val)
		}
		comps = append(comps, strings.Join(parts, "+"))
	}
	return comps, nil
}

// canonical returns the case-folded lookup key for dn.
func canonical(dn string) (string, error) {
	comps, err := components(dn)
	if err != nil {
		return "", err
	}
	return strings.Join(comps, ","), nil
}

// SplitRDN parses dn and returns the attribute type and decoded value of
// the first attribute of the leading RDN.
func SplitRDN(dn string) (attr, value string, err error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", "", ldap.NewError(ldap.LDAPResultInvalidDNSyntax, fmt.Errorf("invalid dn %q: %v", dn, err))
	}
	if len(parsed.RDNs) == 0 || len(parsed.RDNs[0].Attributes) == 0 {
		return "", "", ldap.NewError(ldap.LDAPResultInvalidDNSyntax, fmt.Errorf("invalid dn %q: no rdn", dn))
	}
	first := parsed.RDNs[0].Attributes[0]
	return first.Type, first.Value, nil
}

// ParentDN returns the raw text after the first unescaped comma of dn, or
// "" when dn has a single RDN.
func ParentDN(dn string) string {
	escaped := false
	for i := 0; i < len(dn); i++ {
		switch {
		case escaped:
			escaped = false
		case dn[i] == '\\':
			escaped = true
		case dn[i] == ',':
			return dn[i+1:]
		}
	}
	return ""
}

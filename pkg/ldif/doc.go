// Package ldif reads and writes directory fixture content in LDIF
// interchange form (RFC 2849 subset): one record per blank-line-separated
// paragraph, "dn:" first, folded continuation lines, "::" base64 values,
// "#" comments. Attribute options and change records are not supported;
// fixtures describe plain entries only.
//
// The package works on the raw seed shape, a DN → attribute → values map,
// so it stays free of the rest of the module and can be used on its own.
package ldif

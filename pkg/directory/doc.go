// Package directory holds the in-memory directory a simulated connection
// operates on.
//
// A Store maps DNs to attribute lists. DN and attribute-name lookups are
// case-insensitive while the first-seeded casing is preserved for
// presentation; attribute values keep their original case and order. Stores
// are seeded from Content (a plain DN → attribute → values map, also
// loadable from YAML, JSON, or LDIF fixture files) and deep-copy it, so the
// seed itself is never aliased and can be reused across connections.
//
// Hierarchy comparisons (base, one-level, subtree scopes) work on parsed DN
// components, never on substrings, so escaped separators inside values do
// not confuse them.
package directory

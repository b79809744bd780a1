// Package password matches bind credentials against stored userPassword
// values.
//
// Stored values may be plaintext or carry an RFC 3112 style {SCHEME}
// prefix; {SHA}, {SSHA}, {SHA256}, {SSHA256}, {SHA512}, {SSHA512},
// {CRYPT} (md5-crypt only), and {CLEARTEXT} are understood. Unsupported
// schemes and undecodable payloads simply never match, so a caller can
// try each stored value in turn.
package password

package password

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/GehirnInc/crypt"
	_ "github.com/GehirnInc/crypt/md5_crypt"
)

// Password scheme prefixes.
const (
	SchemeSHA       = "{SHA}"
	SchemeSSHA      = "{SSHA}"
	SchemeSHA256    = "{SHA256}"
	SchemeSSHA256   = "{SSHA256}"
	SchemeSHA512    = "{SHA512}"
	SchemeSSHA512   = "{SSHA512}"
	SchemeCrypt     = "{CRYPT}"
	SchemeCleartext = "{CLEARTEXT}"
)

// ErrUnsupportedScheme is returned by Hash for schemes it cannot produce.
var ErrUnsupportedScheme = errors.New("password: unsupported scheme")

// Match reports whether candidate matches one stored value. An exact match
// of the full stored value always succeeds, scheme prefix included; beyond
// that, hashed values match when the scheme is supported and verification
// succeeds. Unknown schemes, bad base64, and wrong-length digests are never
// a match and never an error.
func Match(candidate, stored string) bool {
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1 {
		return true
	}
	if stored == "" {
		return false
	}

	schemeEnd := strings.Index(stored, "}")
	if !strings.HasPrefix(stored, "{") || schemeEnd == -1 {
		return false
	}

	scheme := strings.ToUpper(stored[:schemeEnd+1])
	payload := stored[schemeEnd+1:]

	switch scheme {
	case SchemeCleartext:
		return subtle.ConstantTimeCompare([]byte(candidate), []byte(payload)) == 1
	case SchemeSHA:
		return verifyDigest(sha1.New, sha1.Size, false, candidate, payload)
	case SchemeSSHA:
		return verifyDigest(sha1.New, sha1.Size, true, candidate, payload)
	case SchemeSHA256:
		return verifyDigest(sha256.New, sha256.Size, false, candidate, payload)
	case SchemeSSHA256:
		return verifyDigest(sha256.New, sha256.Size, true, candidate, payload)
	case SchemeSHA512:
		return verifyDigest(sha512.New, sha512.Size, false, candidate, payload)
	case SchemeSSHA512:
		return verifyDigest(sha512.New, sha512.Size, true, candidate, payload)
	case SchemeCrypt:
		return verifyCrypt(candidate, payload)
	default:
		return false
	}
}

// verifyDigest checks a base64 digest payload. Salted payloads are laid out
// digest || salt; unsalted payloads must be exactly one digest long.
func verifyDigest(newHash func() hash.Hash, size int, salted bool, candidate, payload string) bool {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return false
	}
	if salted {
		if len(raw) <= size {
			return false
		}
	} else if len(raw) != size {
		return false
	}

	digest, salt := raw[:size], raw[size:]
	h := newHash()
	h.Write([]byte(candidate))
	h.Write(salt)
	return subtle.ConstantTimeCompare(h.Sum(nil), digest) == 1
}

// verifyCrypt checks a crypt(3) payload. Only the md5-crypt form ($1$...)
// is supported; classic DES and other modular forms never match.
func verifyCrypt(candidate, payload string) bool {
	if !strings.HasPrefix(payload, "$1$") {
		return false
	}
	return crypt.MD5.New().Verify(payload, []byte(candidate)) == nil
}

// Hash produces a stored value for the given scheme, generating a random
// 8-byte salt for the salted forms. Intended for building test fixtures.
func Hash(plaintext, scheme string) (string, error) {
	switch strings.ToUpper(scheme) {
	case SchemeCleartext:
		return SchemeCleartext + plaintext, nil
	case SchemeSHA:
		return hashDigest(sha1.New, SchemeSHA, plaintext, nil), nil
	case SchemeSSHA:
		salt, err := newSalt()
		if err != nil {
			return "", err
		}
		return hashDigest(sha1.New, SchemeSSHA, plaintext, salt), nil
	case SchemeSHA256:
		return hashDigest(sha256.New, SchemeSHA256, plaintext, nil), nil
	case SchemeSSHA256:
		salt, err := newSalt()
		if err != nil {
			return "", err
		}
		return hashDigest(sha256.New, SchemeSSHA256, plaintext, salt), nil
	case SchemeSHA512:
		return hashDigest(sha512.New, SchemeSHA512, plaintext, nil), nil
	case SchemeSSHA512:
		salt, err := newSalt()
		if err != nil {
			return "", err
		}
		return hashDigest(sha512.New, SchemeSSHA512, plaintext, salt), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

func hashDigest(newHash func() hash.Hash, scheme, plaintext string, salt []byte) string {
	h := newHash()
	h.Write([]byte(plaintext))
	h.Write(salt)
	return scheme + base64.StdEncoding.EncodeToString(append(h.Sum(nil), salt...))
}

func newSalt() ([]byte, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("password: generating salt: %w", err)
	}
	return salt, nil
}

package password

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// DigestSize is the length in bytes of a stored credential.
const DigestSize = sha512.Size

// Digest is a stored credential: one link of a SHA-512 chain.
//
// Storage encodings are the raw 64 bytes (Bytes) or 128 lowercase hex characters (String).
// Both are 1:1 invertible through DigestFromBytes and ParseDigest.
type Digest [DigestSize]byte

// String returns the lowercase hex encoding.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Bytes returns a copy of the raw digest.
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestSize)
	copy(out, d[:])
	return out
}

// IsZero reports whether d is the zero value (never a real credential).
func (d Digest) IsZero() bool { return d == Digest{} }

// Equal compares two digests in constant time.
func (d Digest) Equal(other Digest) bool {
	return subtle.ConstantTimeCompare(d[:], other[:]) == 1
}

// DigestFromBytes decodes a raw stored credential.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, ErrInvalidHash
	}
	copy(d[:], b)
	return d, nil
}

// ParseDigest decodes the hex storage form.
// Only the canonical lowercase encoding produced by String is accepted.
func ParseDigest(s string) (Digest, error) {
	var d Digest

	s = strings.TrimSpace(s)
	if len(s) != 2*DigestSize {
		return d, ErrInvalidHash
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, ErrInvalidHash
	}
	// Reject upper-case so that each credential has exactly one text form.
	if d.String() != s {
		return Digest{}, ErrInvalidHash
	}
	return d, nil
}

func sum(b []byte) Digest { return Digest(sha512.Sum512(b)) }

package password

import "math/rand/v2"

const (
	// SchemeVersion identifies the credential format (SHA-512 chain, bound MaxIterations).
	SchemeVersion = 1

	// MaxIterations bounds the chain depth drawn by Encode and scanned by Validate.
	// It is not stored with credentials: lowering it breaks every credential whose
	// depth falls past the new bound. Treat it as part of SchemeVersion.
	MaxIterations uint8 = 100
)

// Source is the randomness used to pick a chain depth.
//
// *rand.Rand from math/rand/v2 satisfies it. The depth only has to be unpredictable
// enough to decorrelate credentials; it is not key material.
type Source interface {
	IntN(n int) int
}

// globalSource uses the process-wide math/rand/v2 generator, which is safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Encoder produces and checks credentials for a fixed iteration bound.
//
// An Encoder is safe for concurrent use when its Source is. The default source is;
// a seeded *rand.Rand passed via WithSource is not.
type Encoder struct {
	maxIterations uint8
	src           Source
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithSource replaces the default random source (e.g. a seeded generator in tests).
func WithSource(src Source) Option {
	return func(e *Encoder) {
		if src != nil {
			e.src = src
		}
	}
}

// New builds an Encoder. maxIterations must be at least 1.
func New(maxIterations uint8, opts ...Option) (*Encoder, error) {
	if maxIterations == 0 {
		return nil, ErrInvalidIterations
	}

	e := &Encoder{
		maxIterations: maxIterations,
		src:           globalSource{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e, nil
}

// Default returns an Encoder bound to MaxIterations using the global random source.
func Default() *Encoder {
	return &Encoder{maxIterations: MaxIterations, src: globalSource{}}
}

// MaxIterations returns the bound this encoder was built with.
func (e *Encoder) MaxIterations() uint8 { return e.maxIterations }

// Encode hashes password and then re-hashes the result k times, k drawn from [0, MaxIterations).
// For a bound of 1 the result is always SHA-512(password).
func (e *Encoder) Encode(password []byte) Digest {
	d := sum(password)
	for k := e.depth(); k > 0; k-- {
		d = sum(d[:])
	}
	return d
}

// Validate reports whether stored lies on the chain started at SHA-512(password)
// at a depth in [0, MaxIterations).
func (e *Encoder) Validate(password []byte, stored Digest) bool {
	_, ok := e.Locate(password, stored)
	return ok
}

// ValidateBytes is Validate over the raw storage form. Malformed input never matches.
func (e *Encoder) ValidateBytes(password, stored []byte) bool {
	d, err := DigestFromBytes(stored)
	if err != nil {
		return false
	}
	return e.Validate(password, d)
}

// Locate returns the chain depth at which stored matches, scanning depths [0, MaxIterations).
// The walk stops at the first match.
func (e *Encoder) Locate(password []byte, stored Digest) (int, bool) {
	n := int(e.maxIterations)
	cur := sum(password)
	for depth := 0; ; depth++ {
		if cur.Equal(stored) {
			return depth, true
		}
		if depth+1 >= n {
			return 0, false
		}
		cur = sum(cur[:])
	}
}

// depth draws the number of extra chain steps, folding a misbehaving Source back into range.
func (e *Encoder) depth() int {
	n := int(e.maxIterations)
	if n <= 1 {
		return 0
	}
	k := e.src.IntN(n)
	if k < 0 || k >= n {
		k = ((k % n) + n) % n
	}
	return k
}

// Encode is the stateless form of (*Encoder).Encode using the global random source.
// A bound of 0 is treated as 1 so the function stays total.
func Encode(password []byte, maxIterations uint8) Digest {
	return encoderFor(maxIterations).Encode(password)
}

// Validate is the stateless form of (*Encoder).ValidateBytes.
// A bound of 0 is treated as 1 so the function stays total.
func Validate(password, stored []byte, maxIterations uint8) bool {
	return encoderFor(maxIterations).ValidateBytes(password, stored)
}

func encoderFor(maxIterations uint8) *Encoder {
	if maxIterations == 0 {
		maxIterations = 1
	}
	return &Encoder{maxIterations: maxIterations, src: globalSource{}}
}

package password

// Chain depth bounds: Encode draws k from [0, N) and Validate scans depths [0, N).
// A credential at depth N-1 validates; one at depth N never does.

import (
	"crypto/sha512"
	"encoding/hex"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hunter2Depth0 = "6b97ed68d14eb3f1aa959ce5d49c7dc612e1eb1dafd73b1e705847483fd6a6c809f2ceb4e8df6ff9984c6298ff0285cace6614bf8daa9f0070101b6c89899e22"
	hunter2Depth3 = "8efd6378aa6971c96da82c8c499ab959b6e7ff5d0318d1a5c27e080a5b17bf8c4a89129bb86b0b874eb9e2e5f16a1d2acea09b9e644c735eb4fb305b5a2fa493"
	emptyDepth0   = "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"
	emptyDepth99  = "dabb18791649e4d295ea1a6eee63c8dd71c145e004a3c9e94f516d1f7de6bf9c4ccf144ebb05abba2f4e6912cebe15c50ddc0848866c6432379b1803f1c64669"
)

// fixedSource always returns k, ignoring n.
type fixedSource struct{ k int }

func (s fixedSource) IntN(int) int { return s.k }

// chainAt computes the credential at an explicit depth.
func chainAt(pw []byte, depth int) Digest {
	d := Digest(sha512.Sum512(pw))
	for i := 0; i < depth; i++ {
		d = Digest(sha512.Sum512(d[:]))
	}
	return d
}

func mustEncoder(t *testing.T, n uint8, opts ...Option) *Encoder {
	t.Helper()
	e, err := New(n, opts...)
	require.NoError(t, err)
	return e
}

func TestEncode_SingleIterationIsPlainSHA512(t *testing.T) {
	t.Parallel()

	e := mustEncoder(t, 1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, hunter2Depth0, e.Encode([]byte("hunter2")).String())
	}
	assert.Equal(t, hunter2Depth0, Encode([]byte("hunter2"), 1).String())
}

func TestEncode_GoldenWithFixedDepth(t *testing.T) {
	t.Parallel()

	e := mustEncoder(t, MaxIterations, WithSource(fixedSource{k: 3}))
	d := e.Encode([]byte("hunter2"))
	require.Equal(t, hunter2Depth3, d.String())

	depth, ok := e.Locate([]byte("hunter2"), d)
	require.True(t, ok)
	assert.Equal(t, 3, depth)
}

func TestEncodeValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pw   string
		n    uint8
	}{
		{"n1", "correct horse", 1},
		{"n2", "correct horse", 2},
		{"n50", "samepw", 50},
		{"n100", "hunter2", MaxIterations},
		{"n255", "battery staple", 255},
		{"unicode", "пароль-密码", MaxIterations},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := mustEncoder(t, tc.n)
			for i := 0; i < 25; i++ {
				d := e.Encode([]byte(tc.pw))
				require.True(t, e.Validate([]byte(tc.pw), d))
				require.True(t, Validate([]byte(tc.pw), d.Bytes(), tc.n))
			}
		})
	}
}

func TestValidate_RejectsOtherPassword(t *testing.T) {
	t.Parallel()

	e := Default()
	d := e.Encode([]byte("hunter2"))

	assert.False(t, e.Validate([]byte("hunter3"), d))
	assert.False(t, e.Validate([]byte(""), d))
	assert.False(t, e.Validate([]byte("Hunter2"), d))
	assert.False(t, e.Validate([]byte("hunter2"), Digest{}))
}

func TestValidate_HunterScenario(t *testing.T) {
	t.Parallel()

	d := Encode([]byte("hunter2"), MaxIterations)
	assert.True(t, Validate([]byte("hunter2"), d.Bytes(), MaxIterations))
	assert.False(t, Validate([]byte("hunter3"), d.Bytes(), MaxIterations))
}

func TestEncode_NonDeterministic(t *testing.T) {
	t.Parallel()

	// Two encodings collide only when both draws pick the same depth, p = 1/50.
	const trials = 200
	differ := 0
	for i := 0; i < trials; i++ {
		a := Encode([]byte("samepw"), 50)
		b := Encode([]byte("samepw"), 50)
		if a != b {
			differ++
		}
		require.True(t, Validate([]byte("samepw"), a.Bytes(), 50))
		require.True(t, Validate([]byte("samepw"), b.Bytes(), 50))
	}
	assert.GreaterOrEqual(t, differ, trials*3/4)
}

func TestEncode_EmptyPassword(t *testing.T) {
	t.Parallel()

	assert.Equal(t, emptyDepth0, Encode(nil, 1).String())

	d := Encode([]byte{}, MaxIterations)
	assert.True(t, Validate(nil, d.Bytes(), MaxIterations))
	assert.False(t, Validate([]byte(" "), d.Bytes(), MaxIterations))
}

func TestValidate_DepthBoundary(t *testing.T) {
	t.Parallel()

	e := Default()
	n := int(MaxIterations)

	last, err := ParseDigest(emptyDepth99)
	require.NoError(t, err)
	require.Equal(t, chainAt(nil, n-1), last)

	depth, ok := e.Locate(nil, last)
	require.True(t, ok, "depth N-1 must validate")
	assert.Equal(t, n-1, depth)

	assert.False(t, e.Validate(nil, chainAt(nil, n)), "depth N must not validate")

	// Same credential against a smaller bound falls outside the scan.
	small := mustEncoder(t, MaxIterations-1)
	assert.False(t, small.Validate(nil, last))
}

func TestEncode_MaxDrawIsScanned(t *testing.T) {
	t.Parallel()

	e := mustEncoder(t, 10, WithSource(fixedSource{k: 9}))
	d := e.Encode([]byte("edge"))
	assert.Equal(t, chainAt([]byte("edge"), 9), d)
	assert.True(t, e.Validate([]byte("edge"), d))
}

func TestEncode_OutOfRangeSourceIsFolded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		k, want int
	}{
		{k: -1, want: 9},
		{k: 10, want: 0},
		{k: 23, want: 3},
		{k: -21, want: 9},
	}

	for _, tc := range cases {
		e := mustEncoder(t, 10, WithSource(fixedSource{k: tc.k}))
		d := e.Encode([]byte("pw"))

		depth, ok := e.Locate([]byte("pw"), d)
		require.True(t, ok, "k=%d", tc.k)
		assert.Equal(t, tc.want, depth, "k=%d", tc.k)
	}
}

func TestEncode_SeededSourceIsReproducible(t *testing.T) {
	t.Parallel()

	a := mustEncoder(t, MaxIterations, WithSource(rand.New(rand.NewPCG(1, 2))))
	b := mustEncoder(t, MaxIterations, WithSource(rand.New(rand.NewPCG(1, 2))))

	for i := 0; i < 50; i++ {
		da := a.Encode([]byte("seeded"))
		db := b.Encode([]byte("seeded"))
		require.Equal(t, da, db)
		require.True(t, a.Validate([]byte("seeded"), da))
	}
}

func TestNew_ZeroIterations(t *testing.T) {
	t.Parallel()

	_, err := New(0)
	require.ErrorIs(t, err, ErrInvalidIterations)

	// The package-level form treats 0 as 1.
	d := Encode([]byte("hunter2"), 0)
	assert.Equal(t, hunter2Depth0, d.String())
	assert.True(t, Validate([]byte("hunter2"), d.Bytes(), 0))
}

func TestNew_NilOptionsAndSource(t *testing.T) {
	t.Parallel()

	e := mustEncoder(t, 5, nil, WithSource(nil))
	assert.Equal(t, uint8(5), e.MaxIterations())
	assert.True(t, e.Validate([]byte("x"), e.Encode([]byte("x"))))
}

func TestValidateBytes_Malformed(t *testing.T) {
	t.Parallel()

	e := Default()
	d := e.Encode([]byte("hunter2"))

	assert.False(t, e.ValidateBytes([]byte("hunter2"), nil))
	assert.False(t, e.ValidateBytes([]byte("hunter2"), d.Bytes()[:63]))
	assert.False(t, e.ValidateBytes([]byte("hunter2"), append(d.Bytes(), 0)))
	assert.False(t, Validate([]byte("hunter2"), []byte(d.String()), MaxIterations))
	assert.True(t, e.ValidateBytes([]byte("hunter2"), d.Bytes()))
}

func TestDigest_Encodings(t *testing.T) {
	t.Parallel()

	d, err := ParseDigest(hunter2Depth3)
	require.NoError(t, err)
	assert.Equal(t, hunter2Depth3, d.String())
	assert.False(t, d.IsZero())
	assert.True(t, Digest{}.IsZero())

	raw, _ := hex.DecodeString(hunter2Depth3)
	fromRaw, err := DigestFromBytes(raw)
	require.NoError(t, err)
	assert.True(t, d.Equal(fromRaw))

	// Bytes returns a copy.
	b := d.Bytes()
	b[0] ^= 0xff
	assert.Equal(t, hunter2Depth3, d.String())

	padded, err := ParseDigest("  " + hunter2Depth3 + "\n")
	require.NoError(t, err)
	assert.Equal(t, d, padded)
}

func TestParseDigest_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":     "",
		"short":     hunter2Depth3[:126],
		"long":      hunter2Depth3 + "00",
		"uppercase": "8EFD" + hunter2Depth3[4:],
		"non-hex":   "zz" + hunter2Depth3[2:],
	}

	for name, in := range cases {
		_, err := ParseDigest(in)
		assert.ErrorIs(t, err, ErrInvalidHash, name)
	}

	_, err := DigestFromBytes(make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestEncoder_ConcurrentUse(t *testing.T) {
	t.Parallel()

	e := Default()
	var wg sync.WaitGroup
	errs := make(chan string, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				d := e.Encode([]byte("parallel"))
				if !e.Validate([]byte("parallel"), d) {
					errs <- d.String()
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for d := range errs {
		t.Fatalf("concurrent round-trip failed for %s", d)
	}
}

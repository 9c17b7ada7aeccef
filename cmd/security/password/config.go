package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Policy controls which passwords registration accepts and bounds input size.
type Policy struct {
	MinLength int
	MaxLength int
	// If true, enable an extra, minimal weak-pattern rejection.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
//
// MaxIterations is carried for visibility only; FromEnv never changes it.
type Config struct {
	MaxIterations uint8
	Policy        Policy
}

// DefaultConfig returns the scheme bound and a registration policy for a small social site.
func DefaultConfig() Config {
	return Config{
		MaxIterations: MaxIterations,
		Policy: Policy{
			MinLength:      8,
			MaxLength:      256,
			RejectVeryWeak: false,
		},
	}
}

// Encoder returns an encoder for the configured bound.
func (c Config) Encoder(opts ...Option) (*Encoder, error) {
	return New(c.MaxIterations, opts...)
}

// FromEnv loads the registration policy from environment variables.
//
// Env surface:
// - MURMUR_PASSWORD_MIN_LEN
// - MURMUR_PASSWORD_MAX_LEN
// - MURMUR_PASSWORD_REJECT_VERY_WEAK (true/false)
// - MURMUR_PASSWORD_MAX_ITERATIONS (must equal MaxIterations if set)
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("MURMUR_PASSWORD_MIN_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("MURMUR_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	if v, ok := os.LookupEnv("MURMUR_PASSWORD_MAX_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("MURMUR_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	if v, ok := os.LookupEnv("MURMUR_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MURMUR_PASSWORD_REJECT_VERY_WEAK: %w", err)
		}
		cfg.Policy.RejectVeryWeak = b
	}

	// Stored credentials do not record the bound, so a deployment that disagrees
	// with the compiled constant must fail at startup instead of locking users out.
	if v, ok := os.LookupEnv("MURMUR_PASSWORD_MAX_ITERATIONS"); ok {
		n, err := atoiPositiveInt(v, 1, 255)
		if err != nil {
			return Config{}, fmt.Errorf("MURMUR_PASSWORD_MAX_ITERATIONS: %w", err)
		}
		if n != int(MaxIterations) {
			return Config{}, fmt.Errorf(
				"MURMUR_PASSWORD_MAX_ITERATIONS: %d does not match scheme v%d bound %d",
				n, SchemeVersion, MaxIterations,
			)
		}
	}

	// Final sanity.
	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func atoiPositiveInt(s string, minVal, maxVal int) (int, error) {
	s = strings.TrimSpace(s)
	i64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}

	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean")
	}
}

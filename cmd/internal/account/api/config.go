package accountapi

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls account API limits and login throttling.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	// Per-IP sliding window over failed credential checks.
	LoginIPMax    int
	LoginIPWindow time.Duration

	// Per-handle progressive lockout over failed credential checks.
	LockoutShortThreshold  int
	LockoutShortDuration   time.Duration
	LockoutLongThreshold   int
	LockoutLongDuration    time.Duration
	LockoutSevereThreshold int
	LockoutSevereDuration  time.Duration
}

// DefaultConfig returns the values LoadConfigFromEnv falls back to.
func DefaultConfig() Config {
	return Config{
		TrustProxy:             false,
		MaxBodyBytes:           64 << 10,
		LoginIPMax:             20,
		LoginIPWindow:          5 * time.Minute,
		LockoutShortThreshold:  5,
		LockoutShortDuration:   5 * time.Minute,
		LockoutLongThreshold:   10,
		LockoutLongDuration:    30 * time.Minute,
		LockoutSevereThreshold: 20,
		LockoutSevereDuration:  2 * time.Hour,
	}
}

// LoadConfigFromEnv loads account API config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		TrustProxy:             envBool("MURMUR_ACCOUNT_TRUST_PROXY", def.TrustProxy),
		MaxBodyBytes:           envInt64("MURMUR_ACCOUNT_MAX_BODY_BYTES", def.MaxBodyBytes),
		LoginIPMax:             envInt("MURMUR_ACCOUNT_LOGIN_IP_MAX", def.LoginIPMax),
		LoginIPWindow:          envDuration("MURMUR_ACCOUNT_LOGIN_IP_WINDOW", def.LoginIPWindow),
		LockoutShortThreshold:  envInt("MURMUR_ACCOUNT_LOCKOUT_SHORT_THRESHOLD", def.LockoutShortThreshold),
		LockoutShortDuration:   envDuration("MURMUR_ACCOUNT_LOCKOUT_SHORT_DURATION", def.LockoutShortDuration),
		LockoutLongThreshold:   envInt("MURMUR_ACCOUNT_LOCKOUT_LONG_THRESHOLD", def.LockoutLongThreshold),
		LockoutLongDuration:    envDuration("MURMUR_ACCOUNT_LOCKOUT_LONG_DURATION", def.LockoutLongDuration),
		LockoutSevereThreshold: envInt("MURMUR_ACCOUNT_LOCKOUT_SEVERE_THRESHOLD", def.LockoutSevereThreshold),
		LockoutSevereDuration:  envDuration("MURMUR_ACCOUNT_LOCKOUT_SEVERE_DURATION", def.LockoutSevereDuration),
	}
}

func (c Config) lockoutTiers() []lockoutTier {
	tiers := []lockoutTier{
		{Threshold: c.LockoutSevereThreshold, Duration: c.LockoutSevereDuration},
		{Threshold: c.LockoutLongThreshold, Duration: c.LockoutLongDuration},
		{Threshold: c.LockoutShortThreshold, Duration: c.LockoutShortDuration},
	}
	out := tiers[:0]
	for _, t := range tiers {
		if t.Threshold > 0 && t.Duration > 0 {
			out = append(out, t)
		}
	}
	return out
}

// horizon is how long failures must be remembered to evaluate every rule.
func (c Config) horizon() time.Duration {
	h := c.LoginIPWindow
	for _, t := range c.lockoutTiers() {
		if t.Duration > h {
			h = t.Duration
		}
	}
	return h
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

package app

import (
	"fmt"

	"murmur/cmd/security/password"
)

// ValidateSecurityConfig loads the credential configuration and fails fast when it cannot
// serve stored credentials. password.FromEnv owns the iteration-bound guard.
func ValidateSecurityConfig() (password.Config, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return password.Config{}, fmt.Errorf("security policy: %w", err)
	}
	return cfg, nil
}

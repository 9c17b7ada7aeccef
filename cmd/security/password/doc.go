// Package password implements murmur's account credential scheme.
//
// A credential is a SHA-512 hash chain over the password whose length is drawn at random
// from [0, MaxIterations) at encode time and never stored. Verification walks the chain
// from SHA-512(password) and accepts on the first matching link.
//
// Properties:
// - Two accounts sharing a password get unlinkable credentials with high probability.
// - Verification cost is bounded by MaxIterations hash evaluations.
// - Encode and Validate are total; malformed stored values are rejected at the decode boundary.
//
// This is not a slow KDF and has a single algorithm. There is no work-factor tuning
// and no hash migration. The registration policy (length, trivial-password rejection)
// lives here too but is applied by the account layer, never by Encode.
package password

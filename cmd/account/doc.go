// Package account implements murmur's account registry and its credential checks.
//
// It is the only caller of the password encoder: Register encodes once, Login and
// Delete validate once. Persistence sits behind Store, with a Postgres implementation
// for deployments and an in-memory one for development and tests.
package account

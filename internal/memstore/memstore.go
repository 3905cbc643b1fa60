// Package memstore provides in-memory implementations of the user, session,
// and program repositories. It backs the "memory" storage driver for local
// development without Postgres/Redis, and doubles as the fake layer in tests.
package memstore

// Package postgres provides a PostgreSQL-backed implementation of the
// agent.StateStore interface.
//
// Agent sessions and their keyed state live in two tables: agent_sessions
// holds one row per session, and agent_session_state holds one JSONB row per
// (session, key) pair. State values round-trip through encoding/json so the
// loosely typed payloads the agents produce survive storage unchanged.
//
// The package accepts a DBTX rather than a concrete connection so the same
// code works against a *sql.DB or a *sql.Tx. Database errors are translated
// to the application's sentinel errors via MapError; raw driver errors never
// cross the package boundary.
package postgres

// Package agent defines the boundary between the orchestration core and the
// external agent execution system. Agents run against a session and write
// their results into that session's keyed state rather than returning them;
// the orchestrator and its poller only ever consume that state through the
// interfaces defined here. Concrete implementations live under
// internal/platform.
package agent

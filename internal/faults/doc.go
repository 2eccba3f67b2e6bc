// Package faults turns the error trees produced by concurrent generation
// fan-out into a single user-facing message. Joined errors are flattened
// depth-first into leaf failures, each leaf is classified against known
// upstream-service signatures, and the resulting messages are deduplicated
// and capped so the output stays bounded no matter how many sub-tasks
// failed.
package faults

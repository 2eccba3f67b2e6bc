// Package domain contains the core business entities and domain logic of
// the application: generation jobs, their per-subtopic content slots, and
// the invariants that tie them together. It is independent of any specific
// infrastructure or delivery mechanism.
package domain

// Package api contains the HTTP handlers for the content-generation
// service: job submission, status and progress polling, and serving the
// generated media artifacts. Handlers depend on narrow service interfaces
// so they can be tested against in-memory fakes.
package api

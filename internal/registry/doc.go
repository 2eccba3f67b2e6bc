// Package registry tracks the state of generation jobs, keyed by job ID.
// It replaces what would otherwise be an ambient global map with an
// explicit service object injected into the driver, the poller, and the
// status API. All mutation funnels through Update, which serializes writers
// so the fill-once discipline on content slots holds even with the driver
// and poller running on separate goroutines.
package registry

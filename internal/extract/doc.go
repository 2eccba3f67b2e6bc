// Package extract normalizes the heterogeneous partial results the
// generation agents write into upstream session state. Agents may store a
// canonical object, a wrapper object holding a named list, or a JSON-encoded
// string of either; every function here accepts any of those shapes and
// returns the canonical client-facing form. All functions are pure,
// deterministic, and never panic: malformed input yields an empty result.
package extract

// Package orchestrator drives the multi-stage content-generation pipeline
// for each submitted topic: decomposition into subtopics, a parallel
// generation fan-out with an incremental poller merging partial results,
// and an authoritative finalization pass. Submission is fire-and-forget;
// callers observe progress exclusively through the job registry. Agent
// execution is delegated to the interfaces in internal/agent and never
// blocks the submitting request.
package orchestrator

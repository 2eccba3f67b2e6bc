// Package gemini provides an implementation of the agent.Runner interface
// that uses Google's Gemini API for topic decomposition and per-subtopic
// content generation.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's orchestration logic to Google's external
// Gemini AI service. It translates between the application's session state
// model and the Gemini API without exposing the details of the external
// service to the core application.
//
// Key components:
//
// 1. Runner:
//   - Implements the agent.Runner interface
//   - Handles communication with the Gemini API
//   - Writes structured results into the agent session state
//
// 2. Prompt Management:
//   - Builds decomposition and generation prompts from the topic text
//   - Requests JSON output where a structured schema is expected
//
// 3. Response Processing:
//   - Parses structured JSON responses from the API
//   - Strips markdown code fences the model sometimes emits
//   - Stores decoded values under the well-known session state keys
//
// 4. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes and translates API errors to application-specific errors
//   - Handles content filtering and safety measures
package gemini

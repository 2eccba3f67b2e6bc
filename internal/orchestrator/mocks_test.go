package orchestrator

import (
	"context"
	"fmt"
)

// mockRunner implements agent.Runner with configurable function fields.
type mockRunner struct {
	RunDecompositionFunc func(ctx context.Context, sessionID, topic string) error
	RunGenerationFunc    func(ctx context.Context, sessionID string, index int, subtopic string) error
}

func (m *mockRunner) RunDecomposition(ctx context.Context, sessionID, topic string) error {
	if m.RunDecompositionFunc != nil {
		return m.RunDecompositionFunc(ctx, sessionID, topic)
	}
	return nil
}

func (m *mockRunner) RunGeneration(ctx context.Context, sessionID string, index int, subtopic string) error {
	if m.RunGenerationFunc != nil {
		return m.RunGenerationFunc(ctx, sessionID, index, subtopic)
	}
	return nil
}

// subtopicNames builds n placeholder subtopic names.
func subtopicNames(n int) []any {
	names := make([]any, n)
	for i := range names {
		names[i] = fmt.Sprintf("subtopic_%d", i+1)
	}
	return names
}

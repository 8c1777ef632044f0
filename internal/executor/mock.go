package executor

import (
	"context"
	"sync"
)

// MockExecutor records commands and answers them from RunFunc.
// With RunFunc unset every command succeeds with empty output.
type MockExecutor struct {
	RunFunc func(ctx context.Context, cmd Command) (string, error)

	mu    sync.Mutex
	calls []Command
}

func (m *MockExecutor) Run(ctx context.Context, cmd Command) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return "", nil
}

// Calls returns a copy of the recorded commands.
func (m *MockExecutor) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.calls))
	copy(out, m.calls)
	return out
}

// Argvs returns the argument vectors of the recorded commands.
func (m *MockExecutor) Argvs() [][]string {
	calls := m.Calls()
	out := make([][]string, len(calls))
	for i, c := range calls {
		out[i] = c.Argv()
	}
	return out
}

package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Call records one invocation of MockProcessRunner.
type Call struct {
	Path string
	Args []string
}

// String joins the command line for easy matching in tests.
func (c Call) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// MockProcessRunner is a mock implementation of ProcessRunner for testing.
type MockProcessRunner struct {
	// RunFunc allows tests to provide custom behavior
	RunFunc func(ctx context.Context, path string, args ...string) (stdout, stderr []byte, err error)

	mu    sync.Mutex
	calls []Call
}

// NewMockProcessRunner creates a new mock process runner.
func NewMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{}
}

// NewErrorMockProcessRunner creates a mock whose commands all fail.
func NewErrorMockProcessRunner(errMsg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(context.Context, string, ...string) ([]byte, []byte, error) {
			return nil, []byte(errMsg), errors.New(errMsg)
		},
	}
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Path: path, Args: append([]string(nil), args...)})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args...)
	}

	return nil, nil, nil
}

// Calls returns the recorded invocations.
func (m *MockProcessRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times Run was called.
func (m *MockProcessRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Package testutil holds test doubles shared across packages.
package testutil

import (
	"context"
	"sync"
)

// Call is one recorded process invocation.
type Call struct {
	Argv []string
	Env  map[string]string
}

// FakeRunner records every invocation instead of starting a process.
// It satisfies docker.Runner.
type FakeRunner struct {
	mu    sync.Mutex
	calls []Call

	// FailOn maps a 1-indexed call number to the error that call returns.
	// The call is still recorded.
	FailOn map[int]error
}

// Run records argv and env and returns the configured error, if any.
func (f *FakeRunner) Run(_ context.Context, argv []string, env map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := Call{Argv: append([]string(nil), argv...), Env: map[string]string{}}
	for k, v := range env {
		c.Env[k] = v
	}
	f.calls = append(f.calls, c)
	return f.FailOn[len(f.calls)]
}

// Calls returns the recorded invocations in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Argvs returns the recorded argument lists with the first skip elements
// of each removed, which is handy for dropping a fixed command prefix.
func (f *FakeRunner) Argvs(skip int) [][]string {
	calls := f.Calls()
	out := make([][]string, 0, len(calls))
	for _, c := range calls {
		if skip > len(c.Argv) {
			out = append(out, []string{})
			continue
		}
		out = append(out, c.Argv[skip:])
	}
	return out
}

package action

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/dev-compose/internal/devspec"
	"github.com/shinji-kodama/dev-compose/internal/docker"
	"github.com/shinji-kodama/dev-compose/internal/document"
	"github.com/shinji-kodama/dev-compose/internal/model"
	"github.com/shinji-kodama/dev-compose/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// prefix is the scaffolding every invocation of newExecutor's project
// starts with.
var prefix = []string{"docker", "compose", "-f", "/tmp/dev/docker-compose.yml"}

// newExecutor builds an Executor for the YAML document src whose compose
// invocations are recorded by the returned runner.
func newExecutor(t *testing.T, src string) (*Executor, *testutil.FakeRunner, *bytes.Buffer) {
	t.Helper()
	raw, err := document.Decode([]byte(src), "dev.yml")
	require.NoError(t, err)
	spec, err := devspec.New(raw)
	require.NoError(t, err)

	runner := &testutil.FakeRunner{}
	out := &bytes.Buffer{}
	exec := &Executor{
		Spec: spec,
		Project: &docker.Project{
			File:   "/tmp/dev/docker-compose.yml",
			TTY:    true,
			Runner: runner,
			Log:    zerolog.Nop(),
		},
		Out: out,
		Log: zerolog.Nop(),
	}
	return exec, runner, out
}

func requireConfigurationError(t *testing.T, err error) *model.CLIError {
	t.Helper()
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "expected CLIError, got %v", err)
	assert.Equal(t, model.ExitConfigurationError, cliErr.Code)
	return cliErr
}

func TestRunHandler_CommandWithExplicitArgs(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
command_defaults: {service: app}
handlers:
  init:
    - command: migrate
      args: ["--force"]
`)

	require.NoError(t, exec.RunHandler(context.Background(), "init", nil))

	assert.Equal(t, [][]string{{"exec", "app", "migrate", "--force"}}, runner.Argvs(len(prefix)))
	assert.Equal(t, prefix, runner.Calls()[0].Argv[:len(prefix)])
}

func TestRunHandler_DelegatePropagatesExtraArgs(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
command_defaults: {service: app}
handlers:
  test:
    - handler: shared
  shared:
    - command: pytest -q
`)

	require.NoError(t, exec.RunHandler(context.Background(), "test", []string{"x"}))

	assert.Equal(t, [][]string{{"exec", "app", "pytest", "-q", "x"}}, runner.Argvs(len(prefix)))
}

func TestRunHandler_DelegateOwnArgsReplaceExtraArgs(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
command_defaults: {service: app}
handlers:
  test:
    - handler: shared
      args: [own]
    - handler: shared
      args: []
  shared:
    - command: run
`)

	require.NoError(t, exec.RunHandler(context.Background(), "test", []string{"x"}))

	assert.Equal(t, [][]string{
		{"exec", "app", "run", "own"},
		{"exec", "app", "run"},
	}, runner.Argvs(len(prefix)))
}

func TestRunHandler_FirstServiceIsDefault(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
services:
  web: {image: nginx}
  db: {image: postgres}
handlers:
  hello:
    - command: echo hi
`)

	require.NoError(t, exec.RunHandler(context.Background(), "hello", nil))
	assert.Equal(t, [][]string{{"exec", "web", "echo", "hi"}}, runner.Argvs(len(prefix)))
}

func TestRunHandler_UnsupportedSpecialAction(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
command_defaults: {service: app}
handlers:
  boot:
    - action: reboot
`)

	err := exec.RunHandler(context.Background(), "boot", nil)

	cliErr := requireConfigurationError(t, err)
	assert.Contains(t, cliErr.Message, "unsupported action")
	assert.Contains(t, cliErr.Message, "reboot")
	assert.Empty(t, runner.Calls())
}

func TestRunHandler_DelegateCycle(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		handler   string
		want      string
		wantCalls int
	}{
		{
			name:    "self",
			doc:     "handlers:\n  loop:\n    - handler: loop\n",
			handler: "loop",
			want:    "handler cycle: loop -> loop",
		},
		{
			name: "two handlers",
			doc: `
command_defaults: {service: app}
handlers:
  a:
    - handler: b
  b:
    - command: echo b
    - handler: a
`,
			handler:   "a",
			want:      "handler cycle: a -> b -> a",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, runner, _ := newExecutor(t, tt.doc)

			cliErr := requireConfigurationError(t, exec.RunHandler(context.Background(), tt.handler, nil))
			assert.Equal(t, tt.want, cliErr.Message)
			assert.Len(t, runner.Calls(), tt.wantCalls)
		})
	}
}

func TestRunHandler_RepeatedDelegateIsNotACycle(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
command_defaults: {service: app}
handlers:
  lint:
    - command: lint
  check:
    - handler: lint
    - handler: lint
`)

	require.NoError(t, exec.RunHandler(context.Background(), "check", nil))
	assert.Equal(t, [][]string{
		{"exec", "app", "lint"},
		{"exec", "app", "lint"},
	}, runner.Argvs(len(prefix)))
}

func TestRunHandler_RestartAction(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
services:
  web: {}
  worker: {}
handlers:
  bounce:
    - action: restart
    - action: restart
      service: worker
`)

	require.NoError(t, exec.RunHandler(context.Background(), "bounce", nil))
	assert.Equal(t, [][]string{
		{"restart", "web"},
		{"restart", "worker"},
	}, runner.Argvs(len(prefix)))
}

func TestRunHandler_RestartWithoutService(t *testing.T) {
	exec, runner, _ := newExecutor(t, "handlers:\n  bounce:\n    - action: restart\n")

	requireConfigurationError(t, exec.RunHandler(context.Background(), "bounce", nil))
	assert.Empty(t, runner.Calls())
}

func TestRunHandler_NoServiceResolvable(t *testing.T) {
	exec, runner, _ := newExecutor(t, "handlers:\n  x:\n    - command: ls\n")

	cliErr := requireConfigurationError(t, exec.RunHandler(context.Background(), "x", nil))
	assert.Contains(t, cliErr.Message, "no container specified for this command")
	assert.Empty(t, runner.Calls())
}

func TestRunHandler_ContextInheritance(t *testing.T) {
	exec, runner, _ := newExecutor(t, `
command_defaults:
  service: app
  user: dev
  working_dir: /srv
  environment: {A: "1", B: "1"}
handlers:
  x:
    - command: env
      user: root
      environment: {B: "2", C: "2"}
    - command: env
      service: db
      working_dir: /tmp
`)

	require.NoError(t, exec.RunHandler(context.Background(), "x", nil))
	assert.Equal(t, [][]string{
		{"exec", "--workdir", "/srv", "--user", "root", "-e", "A=1", "-e", "B=2", "-e", "C=2", "app", "env"},
		{"exec", "--workdir", "/tmp", "--user", "dev", "-e", "A=1", "-e", "B=1", "db", "env"},
	}, runner.Argvs(len(prefix)))

	// Defaults are not changed by an action's overrides.
	assert.Equal(t, map[string]string{"A": "1", "B": "1"}, exec.Spec.CommandDefaults().Environment)
}

func TestRunHandler_AbortsOnFirstFailure(t *testing.T) {
	exec, runner, out := newExecutor(t, `
command_defaults: {service: app}
handlers:
  outer:
    - handler: inner
    - command: never
  inner:
    - command: one
    - command: two
    - command: three
`)
	failure := model.NewCLIError(model.ExitExecutionFailed, "process returned status 1")
	runner.FailOn = map[int]error{2: failure}

	err := exec.RunHandler(context.Background(), "outer", nil)

	assert.Same(t, failure, err, "errors must propagate unchanged")
	assert.Equal(t, [][]string{
		{"exec", "app", "one"},
		{"exec", "app", "two"},
	}, runner.Argvs(len(prefix)))
	assert.Equal(t, "outer [1/2] inner\ninner [1/3] one\ninner [2/3] two\n", out.String())
}

func TestRunHandler_UnknownHandlerIsNoop(t *testing.T) {
	exec, runner, out := newExecutor(t, "handlers:\n  empty: []\n")

	require.NoError(t, exec.RunHandler(context.Background(), "missing", []string{"x"}))
	require.NoError(t, exec.RunHandler(context.Background(), "empty", nil))
	assert.Empty(t, runner.Calls())
	assert.Empty(t, out.String())
}

func TestRunHandler_ProgressWithoutOutput(t *testing.T) {
	exec, runner, _ := newExecutor(t, "command_defaults: {service: a}\nhandlers:\n  x:\n    - command: ls\n")
	exec.Out = nil

	require.NoError(t, exec.RunHandler(context.Background(), "x", nil))
	assert.Len(t, runner.Calls(), 1)
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name   string
		action devspec.CommandAction
		extra  []string
		want   []string
	}{
		{
			name:   "whitespace split",
			action: devspec.CommandAction{Command: "  npm   run\tbuild "},
			want:   []string{"npm", "run", "build"},
		},
		{
			name:   "quotes are literal",
			action: devspec.CommandAction{Command: `echo "a b"`},
			want:   []string{"echo", `"a`, `b"`},
		},
		{
			name:   "explicit args keep spaces",
			action: devspec.CommandAction{Command: "echo", Args: []string{"a b"}},
			extra:  []string{"c"},
			want:   []string{"echo", "a b", "c"},
		},
		{
			name:   "explicit empty args do not split",
			action: devspec.CommandAction{Command: "my tool", Args: []string{}},
			want:   []string{"my tool"},
		},
		{
			name:   "extra args appended after split",
			action: devspec.CommandAction{Command: "ls -l"},
			extra:  []string{"/srv"},
			want:   []string{"ls", "-l", "/srv"},
		},
		{
			name:   "blank command",
			action: devspec.CommandAction{Command: "   "},
			extra:  []string{"x"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandLine(tt.action, tt.extra))
		})
	}
}

func TestResolve_EmptyCommand(t *testing.T) {
	exec, _, _ := newExecutor(t, "command_defaults: {service: a}\n")

	_, _, err := exec.Resolve(devspec.CommandAction{Command: " "}, nil)
	requireConfigurationError(t, err)
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/dev-compose/internal/docker"
	"github.com/shinji-kodama/dev-compose/internal/document"
	"github.com/shinji-kodama/dev-compose/internal/model"
	"github.com/shinji-kodama/dev-compose/internal/schema"
	"github.com/shinji-kodama/dev-compose/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const devYML = `
command_defaults:
  service: app
services:
  app: {image: php}
  db: {image: mysql}
handlers:
  test:
    - command: phpunit
`

// runCLI executes the root command with args against a fake runner and
// returns the recorded invocations.
func runCLI(t *testing.T, args ...string) (*testutil.FakeRunner, error) {
	t.Helper()
	runner := &testutil.FakeRunner{}
	prev := newRunner
	newRunner = func() docker.Runner { return runner }
	t.Cleanup(func() { newRunner = prev })

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return runner, cmd.Execute()
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dev.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// composeFileOf returns the -f argument of a recorded compose invocation.
func composeFileOf(t *testing.T, argv []string) string {
	t.Helper()
	for i := 0; i < len(argv)-1; i++ {
		if argv[i] == "-f" {
			return argv[i+1]
		}
	}
	t.Fatalf("no -f in %v", argv)
	return ""
}

func TestRoot_RunsHandlerWithPassthroughArgs(t *testing.T) {
	path := writeDoc(t, devYML)

	runner, err := runCLI(t, "-f", path, "test", "--filter", "Foo")
	require.NoError(t, err)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	argv := calls[0].Argv
	assert.Contains(t, argv, "exec")
	assert.Equal(t, []string{"app", "phpunit", "--filter", "Foo"}, argv[len(argv)-4:])

	// The working area is gone once the command returns.
	assert.NoFileExists(t, composeFileOf(t, argv))
}

func TestRoot_ExecFlagsBelongToCommand(t *testing.T) {
	path := writeDoc(t, devYML)

	runner, err := runCLI(t, "--file", path, "exec", "-c", "db", "mysql", "-v")
	require.NoError(t, err)

	argv := runner.Calls()[0].Argv
	assert.Equal(t, []string{"db", "mysql", "-v"}, argv[len(argv)-3:])
	assert.False(t, verbose, "-v after the command must not enable verbose mode")
}

func TestRoot_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		args []string
		code model.ExitCode
	}{
		{"missing document", "", []string{"status"}, model.ExitDocumentNotFound},
		{"invalid document", "handlers:\n  x:\n    - {}\n", []string{"status"}, model.ExitInvalidDocument},
		{"unknown command", devYML, []string{"deploy"}, model.ExitConfigurationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dev.yml")
			if tt.doc != "" {
				path = writeDoc(t, tt.doc)
			}

			runner, err := runCLI(t, append([]string{"-f", path}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(err))
			assert.Empty(t, runner.Calls())
		})
	}
}

func TestRoot_ExecutionFailure(t *testing.T) {
	path := writeDoc(t, devYML)
	runner := &testutil.FakeRunner{FailOn: map[int]error{
		1: model.NewCLIError(model.ExitExecutionFailed, "process returned status 2"),
	}}
	prev := newRunner
	newRunner = func() docker.Runner { return runner }
	defer func() { newRunner = prev }()

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"-f", path, "start"})
	err := cmd.Execute()

	assert.Equal(t, model.ExitExecutionFailed, exitCode(err))
	require.Len(t, runner.Calls(), 1)
	assert.NoFileExists(t, composeFileOf(t, runner.Calls()[0].Argv))
}

// inspectingRunner hands each argv to inspect before recording it.
type inspectingRunner struct {
	testutil.FakeRunner
	inspect func(argv []string)
}

func (r *inspectingRunner) Run(ctx context.Context, argv []string, env map[string]string) error {
	r.inspect(argv)
	return r.FakeRunner.Run(ctx, argv, env)
}

func TestRoot_LocalOverrideAndEnvFile(t *testing.T) {
	path := writeDoc(t, devYML)
	dir := filepath.Dir(path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev.local.yml"),
		[]byte("command_defaults:\n  service: db\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.env"), []byte("X=1\n"), 0o644))

	// The generated compose file only exists while the command runs.
	var services *schema.Map
	runner := &inspectingRunner{inspect: func(argv []string) {
		raw, err := document.ReadFile(composeFileOf(t, argv))
		require.NoError(t, err)
		v, _ := raw.(*schema.Map).Get("services")
		services = v.(*schema.Map)
	}}
	prev := newRunner
	newRunner = func() docker.Runner { return runner }
	defer func() { newRunner = prev }()

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"-f", path, "test"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, services)
	assert.Equal(t, []string{"app", "db"}, services.Keys())
	app, _ := services.Get("app")
	envFile, _ := app.(*schema.Map).Get("env_file")
	assert.Equal(t, []any{filepath.Join(dir, "local.env")}, envFile)

	argv := runner.Calls()[0].Argv
	assert.Equal(t, []string{"db", "phpunit"}, argv[len(argv)-2:])
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.ExitCode
	}{
		{"nil", nil, model.ExitSuccess},
		{"plain", errors.New("x"), model.ExitGeneralError},
		{"cli error", model.NewCLIError(model.ExitInvalidDocument, "bad"), model.ExitInvalidDocument},
		{"wrapped cli error", fmt.Errorf("ctx: %w", model.NewCLIError(model.ExitDockerNotRunning, "no docker")), model.ExitDockerNotRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestPrintError(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, "invalid devSpec document dev.yml", errors.New("validation error: unrecognized property (servics)"))
		assert.Equal(t, "Error: invalid devSpec document dev.yml: validation error: unrecognized property (servics)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		jsonOutput = true
		defer func() { jsonOutput = false }()

		var buf bytes.Buffer
		printError(&buf, "boom", errors.New("detail"))

		var got map[string]map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "boom", got["error"]["message"])
		assert.Equal(t, "detail", got["error"]["detail"])
	})
}

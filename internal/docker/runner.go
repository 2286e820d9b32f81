package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/shinji-kodama/dev-compose/internal/model"
)

// Runner starts an external process and waits for it to finish.
//
// argv[0] is the program and the rest are its arguments. env holds extra
// variables layered over the current process environment. Implementations
// return a *model.CLIError with ExitDockerNotRunning when the program cannot
// be started and ExitExecutionFailed when it exits with a non-zero status.
type Runner interface {
	Run(ctx context.Context, argv []string, env map[string]string) error
}

// ExecRunner is the Runner backed by os/exec. The child shares the
// terminal: stdin, stdout and stderr default to the current process's.
type ExecRunner struct {
	// Dir is the child's working directory. Empty means the current one.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts argv and waits for it. Cancelling ctx kills the child.
func (r *ExecRunner) Run(ctx context.Context, argv []string, env map[string]string) error {
	if len(argv) == 0 {
		return errors.New("empty command line")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), envList(env)...)
	cmd.Stdin = orReader(r.Stdin, os.Stdin)
	cmd.Stdout = orWriter(r.Stdout, os.Stdout)
	cmd.Stderr = orWriter(r.Stderr, os.Stderr)

	if err := cmd.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.WrapCLIError(model.ExitExecutionFailed, "process was interrupted", ctxErr)
		}
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("unable to run the `%s` command-line tool; is it installed and on your PATH?", argv[0]),
			err,
		)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return model.NewCLIError(
				model.ExitExecutionFailed,
				fmt.Sprintf("process returned status %d", exitErr.ExitCode()),
			)
		}
		// Killed by a signal, usually because ctx was cancelled.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return model.WrapCLIError(model.ExitExecutionFailed, "process was interrupted", err)
	}
	return nil
}

// envList renders env as sorted KEY=VALUE entries.
func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// CommandLine renders argv for log output.
func CommandLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			a = fmt.Sprintf("%q", a)
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}

func orReader(r, fallback io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return fallback
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

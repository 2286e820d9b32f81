// Package shell implements the interactive dev prompt.
//
// The shell accepts the same commands as the command line, one per line.
// A failing command prints its error and the shell keeps going; end of
// input (Ctrl-D) leaves it.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// Executor runs one dev command.
type Executor interface {
	Execute(ctx context.Context, command string, args []string) error
	Commands() []string
	ProjectName() string
}

// LineReader yields input lines. It mirrors the part of *readline.Instance
// the shell uses.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Shell is an interactive prompt driving an Executor.
type Shell struct {
	Exec Executor

	// Stdout and Stderr default to the process's own.
	Stdout io.Writer
	Stderr io.Writer

	// HistoryFile, when set, persists entered lines across sessions.
	HistoryFile string

	// NewReader opens the line source. Defaults to a readline instance on
	// the terminal.
	NewReader func(prompt string, commands []string) (LineReader, error)
}

// Run shows the environment status, then reads and executes commands
// until end of input or until ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	stdout := orWriter(s.Stdout, os.Stdout)
	stderr := orWriter(s.Stderr, os.Stderr)

	if err := s.Exec.Execute(ctx, "status", nil); err != nil {
		return err
	}

	newReader := s.NewReader
	if newReader == nil {
		newReader = s.readlineReader
	}
	prompt := color.YellowString("%s> ", s.Exec.ProjectName())
	rl, err := newReader(prompt, s.Exec.Commands())
	if err != nil {
		return fmt.Errorf("failed to start interactive shell: %w", err)
	}
	defer rl.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			// Ctrl-C at the prompt discards the line.
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(stdout)
			return nil
		case err != nil:
			return err
		}

		fields := ParseLine(line)
		if len(fields) == 0 {
			continue
		}
		if err := s.Exec.Execute(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(stderr, color.RedString("%v", err))
		}
	}
}

func (s *Shell) readlineReader(prompt string, commands []string) (LineReader, error) {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, c := range commands {
		items = append(items, readline.PcItem(c))
	}
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     s.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		Stdout:          s.Stdout,
		Stderr:          s.Stderr,
	})
}

// ParseLine splits a command line on whitespace. Quotes and escapes have
// no special meaning.
func ParseLine(line string) []string {
	return strings.Fields(line)
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

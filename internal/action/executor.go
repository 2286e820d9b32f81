package action

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/shinji-kodama/dev-compose/internal/devspec"
	"github.com/shinji-kodama/dev-compose/internal/docker"
	"github.com/shinji-kodama/dev-compose/internal/model"
)

// Compose is the subset of docker.Project the executor drives.
type Compose interface {
	Compose(ctx context.Context, args ...string) error
	Exec(ctx context.Context, opts docker.ExecOptions, argv ...string) error
}

// banner styles the "<handler> [i/n]" progress prefix.
var banner = color.New(color.BgBlue, color.FgBlack)

// Executor runs the handlers of a DevSpec against a compose project.
type Executor struct {
	Spec    *devspec.DevSpec
	Project Compose

	// Out receives one progress line per action. Nil discards them.
	Out io.Writer

	Log zerolog.Logger
}

// RunHandler runs every action of the named handler in order. extraArgs
// are appended to command actions and inherited by delegate actions that
// do not set their own args. An unknown or empty handler does nothing.
// A delegate that re-enters a handler already running is a configuration
// error, reported before that delegate runs anything.
func (e *Executor) RunHandler(ctx context.Context, name string, extraArgs []string) error {
	return e.runHandler(ctx, name, extraArgs, nil)
}

// runHandler runs name with stack holding the handlers that delegated to it.
func (e *Executor) runHandler(ctx context.Context, name string, extraArgs []string, stack []string) error {
	stack = append(stack[:len(stack):len(stack)], name)
	actions := e.Spec.ActionsFor(name)
	total := len(actions)

	for i, a := range actions {
		e.progress(name, i+1, total, a)

		var err error
		switch a := a.(type) {
		case devspec.CommandAction:
			err = e.runCommand(ctx, a, extraArgs)
		case devspec.SpecialAction:
			err = e.runSpecial(ctx, a)
		case devspec.DelegateAction:
			if slices.Contains(stack, a.Handler) {
				err = model.Configurationf("handler cycle: %s", strings.Join(append(stack, a.Handler), " -> "))
				break
			}
			args := extraArgs
			if a.Args != nil {
				args = a.Args
			}
			err = e.runHandler(ctx, a.Handler, args, stack)
		default:
			err = fmt.Errorf("unknown action type %T", a)
		}
		if err != nil {
			e.Log.Debug().
				Str("handler", name).
				Int("step", i+1).
				Err(err).
				Msg("handler aborted")
			return err
		}
	}
	return nil
}

// Resolve computes the container context and argv of a command action
// without running it.
func (e *Executor) Resolve(a devspec.CommandAction, extraArgs []string) (docker.ExecOptions, []string, error) {
	base := e.Spec.CommandDefaults()
	if name, ok := e.Spec.DefaultServiceName(); ok {
		base.Service = &name
	}
	ctx := devspec.Layer(base, a.Context)

	service := ctx.ServiceName()
	if service == "" {
		return docker.ExecOptions{}, nil, model.Configurationf(
			"no container specified for this command; set \"service\" on the action or in command_defaults")
	}

	argv := commandLine(a, extraArgs)
	if len(argv) == 0 {
		return docker.ExecOptions{}, nil, model.Configurationf("command %q is empty", a.Command)
	}

	opts := docker.ExecOptions{
		Service:    service,
		User:       deref(ctx.User),
		WorkingDir: deref(ctx.WorkingDir),
		Env:        ctx.Environment,
	}
	return opts, argv, nil
}

func (e *Executor) runCommand(ctx context.Context, a devspec.CommandAction, extraArgs []string) error {
	opts, argv, err := e.Resolve(a, extraArgs)
	if err != nil {
		return err
	}
	return e.Project.Exec(ctx, opts, argv...)
}

func (e *Executor) runSpecial(ctx context.Context, a devspec.SpecialAction) error {
	service := a.Context.ServiceName()
	if service == "" {
		service, _ = e.Spec.DefaultServiceName()
	}

	switch a.Name {
	case "restart":
		if service == "" {
			return model.Configurationf("no container specified for action %q", a.Name)
		}
		return e.Project.Compose(ctx, "restart", service)
	default:
		return model.Configurationf("unsupported action %q", a.Name)
	}
}

// progress reports step i of total before the action runs.
func (e *Executor) progress(handler string, i, total int, a devspec.Action) {
	if e.Out == nil {
		return
	}
	fmt.Fprintf(e.Out, "%s %s\n", banner.Sprintf("%s [%d/%d]", handler, i, total), a.Label())
}

// commandLine builds the argv of a command action. Explicit args are used
// verbatim after the command; otherwise the command text is split on
// whitespace. Quotes and escapes have no special meaning.
func commandLine(a devspec.CommandAction, extraArgs []string) []string {
	if strings.TrimSpace(a.Command) == "" {
		return nil
	}
	var argv []string
	if a.Args != nil {
		argv = append(argv, a.Command)
		argv = append(argv, a.Args...)
	} else {
		argv = strings.Fields(a.Command)
	}
	return append(argv, extraArgs...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package controller

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/shinji-kodama/dev-compose/internal/devspec"
	"github.com/shinji-kodama/dev-compose/internal/docker"
	"github.com/shinji-kodama/dev-compose/internal/model"
)

// builtins are the commands handled by Execute itself, in display order.
var builtins = []string{
	"commands", "status", "start", "stop", "restart",
	"init", "destroy", "sync", "exec", "logs",
}

func isBuiltin(name string) bool {
	if name == "help" {
		return true
	}
	for _, b := range builtins {
		if b == name {
			return true
		}
	}
	return false
}

const (
	execUsage = "exec [-c service] [-u user] <program> [args...]"
	logsUsage = "logs [-c service]"
)

// containerFlags parses the options of exec and logs. Parsing stops at the
// first non-flag argument, so the program's own flags pass through.
type containerFlags struct {
	service string
	user    string
	set     *pflag.FlagSet
}

func newContainerFlags(name string, withUser bool) *containerFlags {
	f := &containerFlags{set: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	f.set.SetInterspersed(false)
	f.set.SetOutput(io.Discard)
	f.set.StringVarP(&f.service, "container", "c", "", "service to run in")
	if withUser {
		f.set.StringVarP(&f.user, "user", "u", "", "user to run as")
	}
	return f
}

// parse returns the positional arguments left after the flags.
func (f *containerFlags) parse(args []string, usage string) ([]string, error) {
	if err := f.set.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, model.Configurationf("Syntax: %s", usage)
		}
		return nil, model.WrapCLIError(model.ExitConfigurationError, "Syntax: "+usage, err)
	}
	return f.set.Args(), nil
}

// resolveService returns the -c value, else the default service.
func (c *Controller) resolveService(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if name, ok := c.doc.Spec.DefaultServiceName(); ok && name != "" {
		return name, nil
	}
	return "", model.Configurationf(
		"unable to determine which container to use; specify a service name using -c")
}

// exec runs a program in a service container with the command defaults
// applied. -u overrides the default user.
func (c *Controller) exec(ctx context.Context, args []string) error {
	flags := newContainerFlags("exec", true)
	rest, err := flags.parse(args, execUsage)
	if err != nil {
		return err
	}
	service, err := c.resolveService(flags.service)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return model.Configurationf("Syntax: %s", execUsage)
	}

	override := devspec.ExecContext{Service: &service}
	if flags.user != "" {
		override.User = &flags.user
	}
	layered := devspec.Layer(c.doc.Spec.CommandDefaults(), override)

	opts := docker.ExecOptions{
		Service:    service,
		User:       deref(layered.User),
		WorkingDir: deref(layered.WorkingDir),
		Env:        layered.Environment,
	}
	return c.project.Exec(ctx, opts, rest...)
}

// logs follows the log output of one service.
func (c *Controller) logs(ctx context.Context, args []string) error {
	flags := newContainerFlags("logs", false)
	rest, err := flags.parse(args, logsUsage)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return model.Configurationf("Syntax: %s", logsUsage)
	}
	service, err := c.resolveService(flags.service)
	if err != nil {
		return err
	}
	return c.project.Compose(ctx, "logs", "-f", service)
}

func joinFields(names []string) string {
	return strings.Join(names, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

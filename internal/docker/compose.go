package docker

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
)

// DockerBinary is the program every compose invocation runs.
const DockerBinary = "docker"

// Project is one compose project: a generated compose file evaluated
// relative to a project directory.
type Project struct {
	// Name is the compose project name.
	Name string

	// Dir is the compose project directory. Relative paths inside the
	// compose file resolve against it.
	Dir string

	// File is the path of the generated compose file.
	File string

	// Buildkit enables BuildKit for image builds.
	Buildkit bool

	// TTY reports whether stdout is a terminal. When false, exec is run
	// with -T so compose does not allocate a pseudo-terminal.
	TTY bool

	Runner Runner
	Log    zerolog.Logger
}

// ExecOptions is where and as whom a command runs inside a service
// container. Empty fields are left to the container's configuration.
type ExecOptions struct {
	Service    string
	User       string
	WorkingDir string
	Env        map[string]string
}

// Compose runs `docker compose <args...>` against the project.
func (p *Project) Compose(ctx context.Context, args ...string) error {
	argv := make([]string, 0, len(args)+8)
	argv = append(argv, p.prefix()...)
	argv = append(argv, args...)
	return p.run(ctx, argv)
}

// Exec runs argv inside the service container via `docker compose exec`.
// Environment entries are passed in key order.
func (p *Project) Exec(ctx context.Context, opts ExecOptions, argv ...string) error {
	args := []string{"exec"}
	if !p.TTY {
		args = append(args, "-T")
	}
	if opts.WorkingDir != "" {
		args = append(args, "--workdir", opts.WorkingDir)
	}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}
	args = append(args, opts.Service)
	args = append(args, argv...)
	return p.Compose(ctx, args...)
}

// Environment returns the extra variables passed to every invocation.
func (p *Project) Environment() map[string]string {
	env := map[string]string{}
	if p.Buildkit {
		env["COMPOSE_DOCKER_CLI_BUILD"] = "1"
		env["DOCKER_BUILDKIT"] = "1"
	}
	return env
}

// prefix returns the arguments that target the generated compose file.
func (p *Project) prefix() []string {
	argv := []string{DockerBinary, "compose"}
	if p.Name != "" {
		argv = append(argv, "--project-name", p.Name)
	}
	if p.Dir != "" {
		argv = append(argv, "--project-directory", p.Dir)
	}
	return append(argv, "-f", p.File)
}

func (p *Project) run(ctx context.Context, argv []string) error {
	env := p.Environment()
	p.Log.Debug().
		Str("command", CommandLine(argv)).
		Interface("env", env).
		Msg("running")
	return p.Runner.Run(ctx, argv, env)
}

package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/shinji-kodama/dev-compose/internal/action"
	"github.com/shinji-kodama/dev-compose/internal/devspec"
	"github.com/shinji-kodama/dev-compose/internal/docker"
	"github.com/shinji-kodama/dev-compose/internal/document"
	"github.com/shinji-kodama/dev-compose/internal/model"
)

// ComposeFileName is the name of the generated compose file inside the
// working area.
const ComposeFileName = "docker-compose.yml"

// ContainerLister returns the containers of a compose project.
type ContainerLister func(ctx context.Context, project string) ([]model.ContainerInfo, error)

// Options configures a Controller.
type Options struct {
	// Runner starts docker processes. Defaults to an ExecRunner.
	Runner docker.Runner

	// Out receives command output such as progress lines and the command
	// list. Defaults to os.Stdout.
	Out io.Writer

	// TTY reports whether stdout is a terminal.
	TTY bool

	// JSON switches status output to a JSON container listing obtained
	// from Containers.
	JSON bool

	// Containers lists project containers for JSON status output.
	Containers ContainerLister

	// TempDir is the parent of the working area. Empty means os.TempDir().
	TempDir string

	Log zerolog.Logger
}

// Controller runs dev commands for one loaded devSpec document.
type Controller struct {
	doc      *devspec.Document
	project  *docker.Project
	executor *action.Executor
	out      io.Writer
	json     bool
	lister   ContainerLister
	workDir  string
	log      zerolog.Logger
}

// New creates the working area, writes the generated compose file into it
// and returns a Controller for doc.
func New(doc *devspec.Document, opts Options) (*Controller, error) {
	if opts.Runner == nil {
		opts.Runner = &docker.ExecRunner{}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	data, err := document.Encode(doc.ComposeModel())
	if err != nil {
		return nil, fmt.Errorf("failed to render compose file: %w", err)
	}

	workDir, err := os.MkdirTemp(opts.TempDir, "dev-compose-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	composeFile := filepath.Join(workDir, ComposeFileName)
	if err := os.WriteFile(composeFile, data, 0o600); err != nil {
		_ = os.RemoveAll(workDir)
		return nil, fmt.Errorf("failed to write %s: %w", composeFile, err)
	}
	opts.Log.Debug().Str("file", composeFile).Msg("generated compose file")

	project := &docker.Project{
		Name:     docker.NormalizeProjectName(doc.ProjectName()),
		Dir:      doc.Dir,
		File:     composeFile,
		Buildkit: doc.Spec.Buildkit(),
		TTY:      opts.TTY,
		Runner:   opts.Runner,
		Log:      opts.Log,
	}

	return &Controller{
		doc:     doc,
		project: project,
		executor: &action.Executor{
			Spec:    doc.Spec,
			Project: project,
			Out:     opts.Out,
			Log:     opts.Log,
		},
		out:     opts.Out,
		json:    opts.JSON,
		lister:  opts.Containers,
		workDir: workDir,
		log:     opts.Log,
	}, nil
}

// Close removes the working area. It is safe to call more than once.
func (c *Controller) Close() error {
	if c.workDir == "" {
		return nil
	}
	err := os.RemoveAll(c.workDir)
	c.workDir = ""
	return err
}

// ProjectName is the display name of the environment.
func (c *Controller) ProjectName() string {
	return c.doc.ProjectName()
}

// ComposeFile is the path of the generated compose file.
func (c *Controller) ComposeFile() string {
	return c.project.File
}

// Commands returns the built-in command names followed by the document's
// handler names that do not shadow a built-in.
func (c *Controller) Commands() []string {
	out := append([]string(nil), builtins...)
	for _, name := range c.doc.Spec.HandlerNames() {
		if !isBuiltin(name) {
			out = append(out, name)
		}
	}
	return out
}

// Execute runs one dev command with its arguments.
func (c *Controller) Execute(ctx context.Context, command string, args []string) error {
	c.log.Debug().Str("command", command).Strs("args", args).Msg("execute")

	switch command {
	case "help", "commands":
		return c.printCommands()

	case "status":
		if c.json {
			return c.printStatusJSON(ctx)
		}
		return c.project.Compose(ctx, "ps")

	case "start":
		if len(args) == 1 {
			return c.project.Compose(ctx, "start", args[0])
		}
		return c.project.Compose(ctx, "up", "-d")

	case "stop", "restart":
		if len(args) == 1 {
			return c.project.Compose(ctx, command, args[0])
		}
		return c.project.Compose(ctx, command)

	case "init":
		if err := c.Execute(ctx, "destroy", nil); err != nil {
			return err
		}
		if err := c.rebuild(ctx); err != nil {
			return err
		}
		return c.executor.RunHandler(ctx, "init", nil)

	case "destroy":
		if err := c.executor.RunHandler(ctx, "destroy", nil); err != nil {
			return err
		}
		return c.project.Compose(ctx, "down", "--volumes", "--rmi", "local")

	case "sync":
		if err := c.rebuild(ctx); err != nil {
			return err
		}
		return c.executor.RunHandler(ctx, "sync", nil)

	case "exec":
		return c.exec(ctx, args)

	case "logs":
		return c.logs(ctx, args)

	default:
		if !c.doc.Spec.HasActionsFor(command) {
			return model.Configurationf("no handler exists for command %q", command)
		}
		return c.executor.RunHandler(ctx, command, args)
	}
}

// rebuild pulls images, then builds and starts every service.
func (c *Controller) rebuild(ctx context.Context) error {
	if err := c.project.Compose(ctx, "pull"); err != nil {
		return err
	}
	return c.project.Compose(ctx, "up", "-d", "--build")
}

func (c *Controller) printCommands() error {
	fmt.Fprintln(c.out, color.BlueString("Supported commands:"))
	fmt.Fprintln(c.out, color.GreenString("  %s", joinFields(c.Commands())))
	fmt.Fprintln(c.out)
	return nil
}

// statusJSON is the JSON output of `status --json`.
type statusJSON struct {
	Project    string                `json:"project"`
	Running    int                   `json:"running"`
	Containers []model.ContainerInfo `json:"containers"`
}

func (c *Controller) printStatusJSON(ctx context.Context) error {
	if c.lister == nil {
		return model.NewCLIError(model.ExitGeneralError, "container listing is not available")
	}
	containers, err := c.lister(ctx, c.project.Name)
	if err != nil {
		return err
	}
	out := statusJSON{Project: c.project.Name, Containers: containers}
	if out.Containers == nil {
		out.Containers = []model.ContainerInfo{}
	}
	for _, ci := range containers {
		if ci.IsRunning() {
			out.Running++
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/shinji-kodama/dev-compose/internal/controller"
	"github.com/shinji-kodama/dev-compose/internal/devspec"
	"github.com/shinji-kodama/dev-compose/internal/docker"
	"github.com/shinji-kodama/dev-compose/internal/model"
	"github.com/shinji-kodama/dev-compose/internal/shell"
)

// historyFileName is kept in the user's home directory.
const historyFileName = ".dev_compose_history"

// newRunner creates the process runner for docker invocations.
var newRunner = func() docker.Runner { return &docker.ExecRunner{} }

// run loads the document and either executes one command or starts the
// interactive shell. The working area is removed on every exit path,
// including termination by SIGTERM or SIGHUP.
func run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := devspec.Load(file)
	if err != nil {
		return err
	}
	VerboseLog("Loaded %s", doc.Path)
	for _, o := range doc.Overrides {
		VerboseLog("Merged local override %s", o)
	}
	for _, f := range doc.EnvFiles {
		VerboseLog("Injecting env file %s", f)
	}

	interactive := len(args) == 0
	ctx, stop := signalContext(ctx, interactive)
	defer stop()

	ctrl, err := controller.New(doc, controller.Options{
		Runner:     newRunner(),
		TTY:        term.IsTerminal(int(os.Stdout.Fd())),
		JSON:       jsonOutput,
		Containers: listContainers,
		Log:        Logger(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			VerboseLog("Failed to remove working area: %v", err)
		}
	}()
	VerboseLog("Generated %s", ctrl.ComposeFile())

	if interactive {
		sh := &shell.Shell{Exec: ctrl, HistoryFile: historyFile()}
		err = sh.Run(ctx)
	} else {
		err = ctrl.Execute(ctx, args[0], args[1:])
	}

	if err != nil && ctx.Err() != nil {
		return model.WrapCLIError(model.ExitGeneralError, "interrupted", err)
	}
	return err
}

// signalContext returns a context cancelled by SIGTERM and SIGHUP, and by
// SIGINT outside the shell. Inside the shell, Ctrl-C interrupts only the
// running child, which receives the signal from the terminal itself.
func signalContext(parent context.Context, interactive bool) (context.Context, context.CancelFunc) {
	if !interactive {
		return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGHUP)
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	go func() {
		for {
			select {
			case <-sigint:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ctx, func() {
		signal.Stop(sigint)
		stop()
	}
}

// listContainers queries the Docker daemon for a project's containers.
func listContainers(ctx context.Context, project string) ([]model.ContainerInfo, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return nil, err
	}
	VerboseLog("Connected to Docker daemon")

	containers, err := docker.ListProjectContainers(ctx, cli.Inner(), project)
	if err != nil {
		return nil, err
	}
	VerboseLog("Found %d containers for project %s", len(containers), project)
	return containers, nil
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

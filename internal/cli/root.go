// Package cli implements the cobra-based command line of dev.
//
// dev has no cobra subcommands: the first positional argument names a
// built-in command or a devSpec handler and everything after it is passed
// through untouched. With no arguments, an interactive shell starts.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/dev-compose/internal/devspec"
	"github.com/shinji-kodama/dev-compose/internal/model"
)

// Global flag variables, bound to the root command's persistent flags.
var (
	// jsonOutput switches status and error output to JSON.
	jsonOutput bool

	// verbose enables debug logging on stderr.
	verbose bool

	// file is the devSpec document to load.
	file string
)

// Build information, set from main.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dev [flags] [command] [args...]",
		Short: "Manage a development environment configured by a devSpec document",
		Long: `dev drives a docker compose development environment described by a
devSpec document, including custom lifecycle handlers such as init,
sync and destroy.

If no command is given, an interactive shell for running dev commands
is started. Try "dev commands" for the commands of the current document.

Examples:
  dev init
  dev exec -c db psql
  dev -f services/dev.yml logs -c web
  dev --json status`,

		Args: cobra.ArbitraryArgs,

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&file, "file", "f", devspec.DefaultFile, "File containing a devSpec document")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Flags after the command name belong to the command (e.g. exec -c).
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the root command and exits with the code carried by the
// returned error, if any.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(os.Stderr, cliErr.Message, cliErr.Err)
		} else {
			printError(os.Stderr, err.Error(), nil)
		}
		os.Exit(int(exitCode(err)))
	}
}

// exitCode maps err to the process exit code.
func exitCode(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	return model.ExitGeneralError
}

// printError writes an error in text or JSON form depending on --json.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		message = fmt.Sprintf("%s: %v", message, underlying)
	}
	fmt.Fprintln(w, errorColor.Sprintf("Error: %s", message))
}

// Package model defines the shared value types for the dev CLI.
//
// Nothing in this package is persisted. ContainerInfo is reconstructed from
// Docker API queries on demand, and CLIError only lives long enough to be
// turned into a process exit code by the cli package.
package model

import (
	"fmt"
	"strings"
)

// ContainerInfo holds runtime information about a compose container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// ServiceName is the compose service the container was created for.
	ServiceName string `json:"serviceName,omitempty"`

	// Image is the image reference the container runs.
	Image string `json:"image,omitempty"`

	// State is the Docker container state (e.g., "running", "exited").
	State string `json:"state"`

	// Status is Docker's human-readable status line (e.g., "Up 3 minutes").
	Status string `json:"status,omitempty"`

	// Labels is the full set of Docker labels on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// IsRunning reports whether the container's state is "running".
func (c ContainerInfo) IsRunning() bool {
	return strings.EqualFold(c.State, "running")
}

// ExitCode defines the process exit codes of the dev CLI.
// These codes allow scripts and CI systems to programmatically determine
// why a command failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitDocumentNotFound indicates the devSpec document could not be read.
	ExitDocumentNotFound ExitCode = 2

	// ExitDockerNotRunning indicates the docker binary could not be started
	// or the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitInvalidDocument indicates the devSpec document is malformed or
	// failed schema validation.
	ExitInvalidDocument ExitCode = 4

	// ExitConfigurationError indicates a structurally valid document that
	// cannot be executed as asked (no service resolvable, unknown handler,
	// unsupported special action).
	ExitConfigurationError ExitCode = 5

	// ExitExecutionFailed indicates a docker compose invocation exited with
	// a non-zero status.
	ExitExecutionFailed ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// Configurationf is shorthand for a CLIError with ExitConfigurationError.
func Configurationf(format string, args ...interface{}) *CLIError {
	return NewCLIError(ExitConfigurationError, fmt.Sprintf(format, args...))
}

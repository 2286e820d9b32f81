// Package model defines the shared value types for the dev CLI.
//
// The package holds no behaviour beyond formatting: process exit codes
// (ExitCode), the CLIError type that carries an exit code up to the
// command layer, and ContainerInfo, the runtime view of a compose
// container returned by the Docker SDK.
package model

// Package docker is the boundary between the dev CLI and Docker.
//
// Two paths reach the daemon:
//
//   - The docker command-line tool, driven through the Runner capability.
//     Every compose invocation goes through Project, which prefixes the
//     arguments that point compose at the generated compose file and the
//     document's directory. Runner is an interface so that callers can be
//     tested with a recording fake instead of real subprocesses.
//   - The Docker Engine SDK, through Client. It is only used for read-only
//     queries such as listing a project's containers for JSON status output.
package docker

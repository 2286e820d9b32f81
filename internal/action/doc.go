// Package action runs devSpec handlers.
//
// A handler is an ordered list of actions. Command actions run a program
// in a service container through `docker compose exec`, special actions
// perform a built-in compose operation, and delegate actions run another
// handler. Actions run strictly one after another and the first failure
// abandons the rest of the sequence, including any enclosing handlers.
package action

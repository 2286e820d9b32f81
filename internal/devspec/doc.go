// Package devspec is the configuration model of a dev environment: the
// validated, defaulted form of a dev.yml document.
//
// A document has compose pass-through sections (version, services,
// networks, volumes), a buildkit toggle, command defaults, and named
// handlers. A handler is an ordered list of actions, and each action is
// exactly one of:
//
//   - CommandAction: run a command in a service container
//   - SpecialAction: a built-in operation such as "restart"
//   - DelegateAction: run another handler
//
// Documents are validated by the schema package against Schema; anything
// that gets past New is safe to execute.
package devspec

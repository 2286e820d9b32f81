// Package controller dispatches dev commands.
//
// A Controller owns the run's ephemeral working area: a temporary
// directory holding the compose file generated from the devSpec. It is
// created by New and removed by Close, so callers must defer Close as soon
// as New succeeds.
package controller

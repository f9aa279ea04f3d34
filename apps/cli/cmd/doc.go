// Package cmd implements the urlmock CLI commands using Cobra.
//
// Available commands:
//   - request: Dispatch one call live, from a fixture, or as a forced failure
//   - mocks: List, show, remove, prune and watch recorded fixtures
//   - record: Run a reverse proxy that captures responses as fixtures
//   - serve: Replay fixtures from a local HTTP server
//   - init: Write a default configuration file
//   - version: Show urlmock version information
package cmd

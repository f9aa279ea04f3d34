// Package config handles configuration loading and management for urlmock.
//
// It provides functionality for:
//   - Loading configuration from .urlmock.yaml or .urlmock.json files
//   - Default configuration values
//   - Layering CLI overrides on top of file values
//   - Producing the immutable RuntimeConfig consumed by request dispatch
package config

// Package output provides formatters for dispatch results, fixture listings
// and fixture change events.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
package output

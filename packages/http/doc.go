// Package http provides the request-building and transport layer of urlmock.
//
// It wraps the standard library's http package with:
//   - Typed request parameters (Value) and their query/form encodings
//   - Request building from a method kind, endpoint and RuntimeConfig
//   - A Client transport with configurable timeouts and rate limiting
//   - Response handling and body reading
package http

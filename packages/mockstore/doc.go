// Package mockstore owns the on-disk fixture library.
//
// Each captured endpoint has one JSON file, <base>/Mocks/<key>.json, where the
// key is the endpoint with every "/" replaced by "_". A catalog describing
// every fixture (capture date, path, endpoint, status code, app version) is
// kept as one JSON blob under the "Mocks" key of a settings.Store.
//
// Capturing is best-effort: failures are logged and never returned to the
// response path. Capturing the same endpoint again replaces both the file
// and its catalog entry.
package mockstore

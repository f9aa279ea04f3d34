// Package dispatch resolves logical requests to exactly one result.
//
// A Session combines a RuntimeConfig, a mockstore.Store and the collaborators
// (Transport, Codec, Executor). For every call it picks one path:
//
//   - ForceFailure: deliver (absent, 400) without touching network or fixtures
//   - ForceReplay: serve the stored fixture for the endpoint, or (absent, 200)
//   - Live: send the request; capture the body as a fixture when mocking is
//     enabled; decode it into the caller's type
//
// ForceFailure wins when both force flags are set. Results are always
// delivered once, on the session Executor, never on the caller's stack.
// The Err field tells apart the outcomes that share a status code, such as
// a missing fixture and an empty 200 response.
package dispatch

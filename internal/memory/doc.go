// Package memory provides the HTTP client for the memory backend API.
//
// # Overview
//
// Every remote operation goes through a Client. The client re-reads its base
// URL from a BaseURLSource (normally the prefs store) on each request, so
// changing the backend URL in settings applies to the next call without
// rebuilding anything.
//
// # Outcomes
//
// Operations return Outcome[T] instead of (T, error). An outcome is either a
// success carrying the decoded body or a failure carrying a *RequestError
// with one of three kinds:
//
//   - KindUnreachable: no response at all (connection refused, reset, DNS).
//     The message is always "backend unreachable".
//   - KindRejected: a non-2xx response. The message is the response body
//     text, or the FastAPI "detail" string when present, or "Unknown error".
//   - KindMalformed: a 2xx response whose body is not valid JSON.
//
// Callers branch on the kind because "backend is down" and "backend said
// no" get different copy:
//
//	out := client.AddMemory(ctx, "buy milk")
//	if _, err := out.Unpack(); err != nil {
//		if memory.IsUnreachable(err) {
//			// show reconnect hint
//		}
//	}
//
// # Uploads
//
// MultipartUpload frames the file between a precomputed part header and
// trailer, so the full body length is known and progress is bytes sent over
// total bytes. Reports are non-decreasing, end at 100 on success and stop
// once the call returns. Uploads ignore context cancellation.
//
// # Request Handling
//
// All requests:
//   - Set Accept: application/json and User-Agent: mnemo/<version>
//   - Carry a fresh X-Request-ID, logged alongside the outcome
//   - Report route and outcome to a metrics.Recorder
//
// The client never retries. Retry policy belongs to the caller; see the
// boot package for the health probe loops.
package memory

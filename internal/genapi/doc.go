// Package genapi provides an HTTP client for AI generation backends.
//
// # Overview
//
// Three backend flavours share one contract:
//
//   - video: asynchronous. POST /generate returns a job id, GET /status/{job_id}
//     reports progress until the job completes or fails.
//   - chat: synchronous. POST /chat returns the reply, POST /clear resets the
//     conversation.
//   - image: synchronous. POST /generate returns the image as a data URI.
//
// Every flavour exposes GET /status for readiness. Paths are configurable via
// Endpoints because the video status path and the readiness path overlap.
//
// # Client Usage
//
//	client, err := genapi.NewClient("127.0.0.1:5000")
//	if err != nil {
//		return err
//	}
//	id, err := client.CreateJob(ctx, genapi.VideoRequest{Prompt: p, Model: "zeroscope", Duration: 3, Resolution: "576x320"})
//	status, err := client.FetchJob(ctx, id)
//
// The client does not poll; see package jobs for the polling state machine.
//
// # Statuses
//
// The status endpoint's status string is normalized: "error" becomes failed and
// "processing" becomes running. Unrecognized values are treated as
// non-terminal so an unexpected backend state never ends a poll loop early.
//
// # Error Handling
//
//   - Transport failures: "execute request: ..."
//   - HTTP 4xx/5xx: *StatusError, with Message taken from the body's "error"
//     field when present
//   - Malformed JSON: "decode response: ..."
//   - {"success": false} replies from chat, clear and image calls: *StatusError
//     with the reported error
//
// # Request Handling
//
// All requests carry Accept: application/json and User-Agent: reel/0.1. No
// client-wide timeout is set because image generation can take minutes; callers
// bound each call with a context deadline instead.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package genapi

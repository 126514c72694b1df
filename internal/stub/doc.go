// Package stub is an in-memory generation backend for local development and
// end-to-end tests. One Server speaks one backend flavour:
//
//   - video: POST /generate returns a job id; GET /status/:job_id reports
//     progress derived from elapsed time; GET /download/:job_id serves the
//     finished file. Prompts containing "fail" end in status "error".
//   - chat: POST /chat, POST /clear and GET /status, with in-memory history.
//   - image: POST /generate returns a PNG data URI synchronously.
//
// Every flavour answers GET /status with a readiness payload.
package stub

// Package jobs drives asynchronous generation jobs: submit a request, then
// poll the job's status on a fixed interval until it completes, fails, or is
// cancelled.
//
// A Client owns at most one poll session. Starting a new session cancels the
// previous one, and a cancelled session never delivers OnComplete or OnError.
// Ticks never overlap: the next status request is scheduled only after the
// previous one has been handled. Responses that arrive after cancellation are
// discarded.
//
// All failures surface as *Error, tagged with a Kind and matched with
// errors.Is against ErrSubmissionFailed, ErrPollTransport and ErrJobFailed.
package jobs

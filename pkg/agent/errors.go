package agent

import "errors"

// Sentinel errors for the command pipeline. Every failure surfaced to
// the caller wraps one of these, so the API layer can discriminate with
// errors.Is while the message stays human-readable.
var (
	// ErrMalformedResponse means the model output was not parseable as
	// a command after code-fence stripping. Never retried.
	ErrMalformedResponse = errors.New("invalid JSON response from AI")

	// ErrInvalidTaskID means a short task id did not resolve against
	// the current snapshot.
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrNoUserMatch means an assignee name matched zero directory users.
	ErrNoUserMatch = errors.New("no user found matching name")

	// ErrMissingFields means a create command omitted required fields.
	// The wrapped message names exactly the absent fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrNoTaskID means an update or delete command carried no task id.
	ErrNoTaskID = errors.New("no task id provided")
)

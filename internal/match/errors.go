package match

import "errors"

// Sentinel errors for the match lifecycle. Callers distinguish them with
// errors.Is; wrapped variants carry the underlying cause.
var (
	// ErrInvalidRoster is returned when the four player ids are not pairwise
	// distinct. It is raised before any backend call is made.
	ErrInvalidRoster = errors.New("match roster must contain four distinct players")

	// ErrInvalidState is returned when a lifecycle step is invoked out of
	// sequence, e.g. completing a match that has no rating preview yet.
	ErrInvalidState = errors.New("lifecycle step invoked out of sequence")

	// ErrInvalidScore is returned for equal or negative final scores.
	ErrInvalidScore = errors.New("final scores must be distinct non-negative integers")

	// ErrAlreadyCompleted is returned when completion is attempted twice for
	// the same match. The deltas are never applied a second time.
	ErrAlreadyCompleted = errors.New("match has already been completed")

	// ErrTransient wraps backend failures. The lifecycle state is left
	// unchanged, so the failed step can simply be retried.
	ErrTransient = errors.New("backend call failed")
)

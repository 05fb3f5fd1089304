package engine

import "errors"

// ErrNoEligibleSubtopic is returned by the selector when no subtopic has any
// available question. This is a true "nothing to serve" condition and should
// surface to the caller as an empty state.
var ErrNoEligibleSubtopic = errors.New("no eligible subtopic")

// ErrNoQuestionAvailable is returned by the picker when a specific subtopic
// has no questions in the bank. Callers recover by retrying selection with
// that subtopic excluded.
var ErrNoQuestionAvailable = errors.New("no question available for subtopic")

// ErrNoPendingAttempt is returned when feedback or an override arrives with
// no in-flight attempt to apply it to.
var ErrNoPendingAttempt = errors.New("no pending attempt")

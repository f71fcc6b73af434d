package domain

import "errors"

// ErrPublisherDown is returned when the snapshot document is missing, stale,
// or unparsable. It is fatal to the session and must surface immediately;
// controller loops never retry it silently.
var ErrPublisherDown = errors.New("publisher not running")

// ErrBatchPending is returned when a command batch is submitted before the
// previous one was consumed. This is a protocol violation by the caller, not
// a runtime condition to recover from.
var ErrBatchPending = errors.New("previous command batch not yet consumed")

// ErrAttemptsExhausted is returned by wait primitives when their bounded
// attempt budget runs out before the predicate holds.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// ErrNotInDialogue is returned when a dialogue operation is invoked while the
// snapshot does not report a dialogue context.
var ErrNotInDialogue = errors.New("not in a dialogue")

// ErrNoSuchOption is returned when a dialogue selection index is out of range.
var ErrNoSuchOption = errors.New("no such dialogue option")

package dialog

import "errors"

var (
	// ErrConfiguration is returned by constructors when a required collaborator
	// or registration is missing. It is never recovered.
	ErrConfiguration = errors.New("dialog configuration error")

	// ErrUnexpectedStep marks a persisted frame that no longer matches its
	// registered definition (unknown dialog, prompt or step index).
	ErrUnexpectedStep = errors.New("unexpected step index")

	// ErrStepLoop is returned when a waterfall keeps advancing inside one turn
	// past its iteration guard.
	ErrStepLoop = errors.New("waterfall step loop")

	// ErrStaleState is returned by a store when the saved version moved on
	// since the state was loaded.
	ErrStaleState = errors.New("stale conversation state")

	// ErrCorruptState is returned by Load when the stored blob cannot be
	// decoded. The store still returns an empty state carrying the stored
	// version so the next save replaces the blob.
	ErrCorruptState = errors.New("corrupt conversation state")
)

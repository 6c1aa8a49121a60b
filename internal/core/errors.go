package core

import "errors"

// Component-boundary errors. Network and store failures are converted to one
// of these (or absorbed into a degraded response) before they reach the
// dispatcher; none of them propagate as unhandled faults.
var (
	// ErrPersistenceFailure means both the primary registration API and the
	// direct store write failed. The draft is discarded; the user retries.
	ErrPersistenceFailure = errors.New("registration could not be persisted")

	// ErrProfileNotFound means a switch target could not be resolved against
	// the session's profile list.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnsupportedFileType means an upload's extension is outside the
	// allow-list. Raised before any store write.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

package importer

import "fmt"

// Stage identifies which part of an import attempt failed.
type Stage string

const (
	// StageFetch covers failures while talking to the message source or
	// reading the store's import boundary.
	StageFetch Stage = "fetch"
	// StagePersist covers failures while writing the batch to the record
	// store. The whole batch rolls back.
	StagePersist Stage = "persist"
)

// ImportError reports a failed import attempt together with the stage that
// failed. Nothing is persisted by a failed import, so a retry re-fetches the
// same window.
type ImportError struct {
	Stage Stage
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed during %s: %v", e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

package pipeline

import "fmt"

// PreprocessError reports a stage failure inside the preprocessing chain.
// It is fatal to the affected page only; the orchestrator never partially
// applies stages.
type PreprocessError struct {
	Stage string
	Err   error
}

func (e *PreprocessError) Error() string {
	return fmt.Sprintf("preprocess %s: %v", e.Stage, e.Err)
}

func (e *PreprocessError) Unwrap() error { return e.Err }

// PersistError reports a failed diagnostic save of a preprocessed image.
// Persistence is a side effect: the error is logged as a warning and never
// fails the page.
type PersistError struct {
	ID  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist preprocessed image %q: %v", e.ID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

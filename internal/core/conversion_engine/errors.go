package conversion_engine

import "errors"

var (
	// ErrBusy is returned when a session is asked to start or reset while it is processing.
	ErrBusy = errors.New("a conversion is already in progress")
	// ErrTooLarge is returned when an upload exceeds the configured size limit.
	ErrTooLarge = errors.New("file exceeds the maximum upload size")
	// ErrSessionNotFound is returned by SessionStore lookups.
	ErrSessionNotFound = errors.New("session not found")
)

// GenericErrorMessage is shown when a failure carries no message of its own.
const GenericErrorMessage = "An unexpected error occurred while processing the PDF."

// Step names the stage of a conversion that failed.
type Step string

const (
	StepRead    Step = "read"
	StepExtract Step = "extract"
)

// StepError ties a failure to the step that produced it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

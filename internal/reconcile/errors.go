package reconcile

import "errors"

// Category classifies fatal conditions. Per-candidate failures are not
// errors; they surface as StateFailed outcomes. Anything returned as a
// *FatalError aborts the remaining pipeline.
type Category string

const (
	// CategoryEnvironmental covers missing tools and invalid specs,
	// detected before any mutation.
	CategoryEnvironmental Category = "environmental"
	// CategorySystemic covers an unwritable config store or an absent
	// package manager, which poisons every remaining resource.
	CategorySystemic Category = "systemic"
	// CategoryAborted is the user declining a destructive escalation.
	CategoryAborted Category = "aborted"
)

type FatalError struct {
	Category Category
	Message  string
	Cause    error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

func fatal(category Category, msg string, cause error) *FatalError {
	return &FatalError{Category: category, Message: msg, Cause: cause}
}

// IsAborted reports whether err is the user declining a confirmation.
func IsAborted(err error) bool {
	var fe *FatalError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Category == CategoryAborted
}

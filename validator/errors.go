package validator

import "fmt"

// ValidationError is a client-caused rejection of a submitted movie
type ValidationError struct {
	Field   string // offending field, empty for the body as a whole
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DependencyError reports that validation could not complete because a
// collaborator failed, e.g. the genre whitelist could not be read
type DependencyError struct {
	Message string
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

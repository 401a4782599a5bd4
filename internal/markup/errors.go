package markup

import "fmt"

// MalformedDocumentError reports markup that could not be parsed. It is scoped
// to a single document so callers can skip it and keep processing a batch.
type MalformedDocumentError struct {
	Document string
	Cause    error
}

func (e *MalformedDocumentError) Error() string {
	name := e.Document
	if name == "" {
		name = "<unnamed>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("malformed document %s: %v", name, e.Cause)
	}
	return fmt.Sprintf("malformed document %s", name)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

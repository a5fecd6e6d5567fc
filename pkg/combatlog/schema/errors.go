package schema

import "fmt"

// ValidationError represents a file-level validation error, such as an
// unsupported version or an empty event list.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// EventError represents an error in an individual event schema.
type EventError struct {
	Index   int    // 0-based index of the event in the file
	Tag     string // event tag (may be empty if the tag field is missing)
	Field   string
	Message string
}

func (e *EventError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("event %q: %s: %s", e.Tag, e.Field, e.Message)
	}
	return fmt.Sprintf("event[%d]: %s: %s", e.Index, e.Field, e.Message)
}

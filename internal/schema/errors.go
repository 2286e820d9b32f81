package schema

import "fmt"

// StructuralError reports input the engine cannot walk at all, such as a
// scalar where a map is required. It aborts before any validation.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Message
}

// ValidationError reports a single schema violation.
type ValidationError struct {
	// Message describes the violation without the location.
	Message string

	// Context is the ':'-joined path of the offending property.
	Context string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%s)", e.Message, e.Context)
}

// joinContext appends key to a parent context path.
func joinContext(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + ":" + key
}

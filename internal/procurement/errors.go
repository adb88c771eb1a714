package procurement

import "fmt"

// ValidationError reports a missing or malformed identity field. It is fatal
// to a single evaluation and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

package pdffill

import (
	"fmt"
	"strings"
)

// TemplateNotFoundError means the bundled template is missing or unusable,
// which is a packaging or deployment defect. Fatal, raised before any
// prompting.
type TemplateNotFoundError struct {
	Path string
	Err  error
}

func (e *TemplateNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("template not found: %s", e.Path)
}

func (e *TemplateNotFoundError) Unwrap() error { return e.Err }

// FieldMismatchError means the schema expects field names the template does
// not carry. Fatal: the slip would silently lose values otherwise.
type FieldMismatchError struct {
	Missing []string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("template is missing form fields: %s", strings.Join(e.Missing, ", "))
}

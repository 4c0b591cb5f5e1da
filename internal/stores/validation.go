package stores

import (
	"fmt"
	"strings"

	"timewallet/internal/api"
)

// ValidationError is a client-side, field-level failure. It pre-empts
// the network call entirely; nothing with a ValidationError attached
// ever reaches the request client.
type ValidationError struct {
	Fields []api.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns the first field message, for single-line banners.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

func validationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []api.FieldError{{Field: field, Message: message}}}
}

// ValidateTaskDraft enforces the task invariants before a create: a
// title and start ≤ end.
func ValidateTaskDraft(d api.TaskDraft) error {
	var fields []api.FieldError
	if strings.TrimSpace(d.Title) == "" {
		fields = append(fields, api.FieldError{Field: "title", Message: "Title is required"})
	}
	if d.End.Before(d.Start) {
		fields = append(fields, api.FieldError{Field: "end", Message: "End must not be before start"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateEventDraft enforces the event invariants: a title, and
// end ≥ start unless the event is all-day.
func ValidateEventDraft(d api.EventDraft) error {
	var fields []api.FieldError
	if strings.TrimSpace(d.Title) == "" {
		fields = append(fields, api.FieldError{Field: "title", Message: "Title is required"})
	}
	if !d.AllDay && d.End.Before(d.Start) {
		fields = append(fields, api.FieldError{Field: "end", Message: "End must not be before start"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateCategoryDraft(d api.CategoryDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return validationError("name", "Name is required")
	}
	return nil
}

// validateRegistration is the client-side schema check for the
// registration form.
func validateRegistration(req api.RegisterRequest) error {
	var fields []api.FieldError
	if strings.TrimSpace(req.Username) == "" {
		fields = append(fields, api.FieldError{Field: "username", Message: "Username is required"})
	}
	if !strings.Contains(req.Email, "@") {
		fields = append(fields, api.FieldError{Field: "email", Message: "A valid email is required"})
	}
	if len(req.Password) < 8 {
		fields = append(fields, api.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	if strings.TrimSpace(req.Name) == "" {
		fields = append(fields, api.FieldError{Field: "name", Message: "Name is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

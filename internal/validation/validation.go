package validation

import (
	"sort"
	"strings"
)

// Errors collects constraint violations keyed by field name. All rules for a
// payload are evaluated before the error is returned, so every violated field
// is reported at once.
type Errors struct {
	Fields map[string][]string `json:"fields"`
}

func NewErrors() *Errors {
	return &Errors{Fields: make(map[string][]string)}
}

// Add records a violation for the given field.
func (e *Errors) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any violation was recorded.
func (e *Errors) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns the collected errors, or nil when everything passed.
// Returning a plain nil (not a typed nil inside an error interface) keeps
// `if err != nil` checks working at call sites.
func (e *Errors) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength   = 3
	MinNumberLength = 8
)

// NumberPattern is a two or three digit prefix, a dash, then digits.
var NumberPattern = regexp.MustCompile(`^\d{2,3}-\d+$`)

// ProblemKind classifies why a field was rejected.
type ProblemKind string

const (
	MissingField  ProblemKind = "missing_field"
	TooShort      ProblemKind = "too_short"
	InvalidFormat ProblemKind = "invalid_format"
)

// FieldProblem is one rejected field.
type FieldProblem struct {
	Field   string
	Kind    ProblemKind
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any problem of the given kind was found.
func (e *ValidationError) Has(kind ProblemKind) bool {
	for _, p := range e.Problems {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// Validate checks a candidate name and number. It returns nil or a
// *ValidationError describing all failing fields.
func Validate(name, number string) error {
	var problems []FieldProblem
	if p, ok := checkName(name); !ok {
		problems = append(problems, p)
	}
	if p, ok := checkNumber(number); !ok {
		problems = append(problems, p)
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// ValidateNumber runs only the number rules.
func ValidateNumber(number string) error {
	if p, ok := checkNumber(number); !ok {
		return &ValidationError{Problems: []FieldProblem{p}}
	}
	return nil
}

func checkName(name string) (FieldProblem, bool) {
	switch {
	case name == "":
		return FieldProblem{Field: "name", Kind: MissingField, Message: "name is missing"}, false
	case utf8.RuneCountInString(name) < MinNameLength:
		return FieldProblem{
			Field:   "name",
			Kind:    TooShort,
			Message: fmt.Sprintf("name %q is shorter than the minimum allowed length (%d)", name, MinNameLength),
		}, false
	}
	return FieldProblem{}, true
}

func checkNumber(number string) (FieldProblem, bool) {
	switch {
	case number == "":
		return FieldProblem{Field: "number", Kind: MissingField, Message: "number is missing"}, false
	case len(number) < MinNumberLength:
		return FieldProblem{
			Field:   "number",
			Kind:    InvalidFormat,
			Message: fmt.Sprintf("number %q is shorter than the minimum allowed length (%d)", number, MinNumberLength),
		}, false
	case !NumberPattern.MatchString(number):
		return FieldProblem{
			Field:   "number",
			Kind:    InvalidFormat,
			Message: fmt.Sprintf("number %q must look like 09-1234556 or 040-123456", number),
		}, false
	}
	return FieldProblem{}, true
}

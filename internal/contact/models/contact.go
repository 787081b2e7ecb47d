package models

import "strings"

// Contact is a phonebook entry.
//
// Invariants (enforced at write time, not for legacy records):
//   - ID is assigned by the store and immutable afterwards
//   - Name has at least MinNameLength characters
//   - Number fully matches NumberPattern and has at least MinNumberLength characters
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// CreateContactRequest is the body of POST /api/persons.
type CreateContactRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Normalize trims surrounding whitespace from all fields.
func (r *CreateContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Number = strings.TrimSpace(r.Number)
}

// UpdateContactRequest is the body of PUT /api/persons/{id}. Only the
// number can change; any name in the body is ignored.
type UpdateContactRequest struct {
	Number string `json:"number"`
}

// Normalize trims surrounding whitespace from the number.
func (r *UpdateContactRequest) Normalize() {
	r.Number = strings.TrimSpace(r.Number)
}

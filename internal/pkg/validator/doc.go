// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Business code depends on the Validator interface. The go-playground
// implementation reports failures as a snake_case field to message map.
package validator

// Validator validates a struct according to its tags.
type Validator interface {
	Validate(data any) error
}

// Package validator checks usecase inputs against their `validate` struct tags and
// reports failures per field, keyed in snake_case.
package validator

// Validator validates structs tagged with `validate` rules.
type Validator interface {
	Validate(data any) error
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrSchemaNotFound is returned when a referenced schema name has no registry entry
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrUnexpectedInput is returned when a value expected to be object-capable is not
	ErrUnexpectedInput = errors.New("unexpected input")

	// ErrUnexpectedModel is returned when a schema argument is not a usable entity schema
	ErrUnexpectedModel = errors.New("unexpected model")

	// ErrExpectedSchemaSingle is returned when a to-many relation does not declare exactly one element schema
	ErrExpectedSchemaSingle = errors.New("expected single schema")

	// ErrTypeMismatch is returned when a value does not have the shape a code path requires
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotFound is returned when a stored entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when registering something that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")
)

// SchemaNotFoundError reports a schema name missing from the registry
type SchemaNotFoundError struct {
	Name string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema %q not found", e.Name)
}

func (e *SchemaNotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

// UnexpectedInputError reports an input that cannot be normalized as an object
type UnexpectedInputError struct {
	Found string
}

func (e *UnexpectedInputError) Error() string {
	return fmt.Sprintf("unexpected input given to normalize: expected an object, found %q", e.Found)
}

func (e *UnexpectedInputError) Is(target error) bool {
	return target == ErrUnexpectedInput
}

// UnexpectedModelError reports a schema argument that is not an entity schema
type UnexpectedModelError struct {
	Found string
}

func (e *UnexpectedModelError) Error() string {
	return fmt.Sprintf("unexpected model given to normalize: expected an entity schema, found %q", e.Found)
}

func (e *UnexpectedModelError) Is(target error) bool {
	return target == ErrUnexpectedModel
}

// ExpectedSchemaSingleError reports a to-many relation declaring the wrong number of schemas
type ExpectedSchemaSingleError struct {
	Property string
	Count    int
}

func (e *ExpectedSchemaSingleError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("relation %q: expected a single element schema, found %d", e.Property, e.Count)
	}
	return fmt.Sprintf("expected a single element schema, found %d", e.Count)
}

func (e *ExpectedSchemaSingleError) Is(target error) bool {
	return target == ErrExpectedSchemaSingle
}

// TypeMismatchError reports a value of the wrong shape
type TypeMismatchError struct {
	Expected string
	Found    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// Helper functions for creating errors

// NewSchemaNotFoundError creates a new SchemaNotFoundError
func NewSchemaNotFoundError(name string) error {
	return &SchemaNotFoundError{Name: name}
}

// NewUnexpectedInputError creates a new UnexpectedInputError
func NewUnexpectedInputError(found string) error {
	return &UnexpectedInputError{Found: found}
}

// NewUnexpectedModelError creates a new UnexpectedModelError
func NewUnexpectedModelError(found string) error {
	return &UnexpectedModelError{Found: found}
}

// NewExpectedSchemaSingleError creates a new ExpectedSchemaSingleError
func NewExpectedSchemaSingleError(property string, count int) error {
	return &ExpectedSchemaSingleError{Property: property, Count: count}
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(expected, found string) error {
	return &TypeMismatchError{Expected: expected, Found: found}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// IsSchemaNotFound checks if an error is a schema not found error
func IsSchemaNotFound(err error) bool {
	return errors.Is(err, ErrSchemaNotFound)
}

// IsUnexpectedInput checks if an error is an unexpected input error
func IsUnexpectedInput(err error) bool {
	return errors.Is(err, ErrUnexpectedInput)
}

// IsUnexpectedModel checks if an error is an unexpected model error
func IsUnexpectedModel(err error) bool {
	return errors.Is(err, ErrUnexpectedModel)
}

// IsExpectedSchemaSingle checks if an error is an expected single schema error
func IsExpectedSchemaSingle(err error) bool {
	return errors.Is(err, ErrExpectedSchemaSingle)
}

// IsTypeMismatch checks if an error is a type mismatch error
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

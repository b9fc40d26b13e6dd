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
	// ErrAlreadyInitialized is returned when a registry is initialized a second time
	ErrAlreadyInitialized = errors.New("registry already initialized")

	// ErrUninitialized is returned for any access to a registry that was never initialized
	ErrUninitialized = errors.New("registry not initialized")

	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrNotOwner is returned when a transfer is attempted by someone other than the current owner
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrUnauthorized is returned when the authorizer denies a call
	ErrUnauthorized = errors.New("authorization failed")

	// ErrPaymentFailed is returned when the payment mover rejects a transfer
	ErrPaymentFailed = errors.New("payment failed")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoIndexMap is returned when no index map is found for a type
	ErrNoIndexMap = errors.New("no index map found for type")
)

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

// NotOwnerError is returned by a transfer whose sender does not hold the asset
type NotOwnerError struct {
	ID     uint64
	Caller string
	Owner  string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("asset %d is owned by %q, not %q", e.ID, e.Owner, e.Caller)
}

func (e *NotOwnerError) Is(target error) bool {
	return target == ErrNotOwner
}

// AuthorizationError is returned when the caller cannot act as Address
type AuthorizationError struct {
	Address string
	Reason  string
}

func (e *AuthorizationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("authorization failed for %q: %s", e.Address, e.Reason)
	}
	return fmt.Sprintf("authorization failed for %q", e.Address)
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrUnauthorized
}

// PaymentError wraps a rejection from the payment collaborator
type PaymentError struct {
	From   string
	To     string
	Amount string
	Asset  string
	Err    error
}

func (e *PaymentError) Error() string {
	msg := fmt.Sprintf("payment of %s %s from %q to %q failed", e.Amount, e.Asset, e.From, e.To)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PaymentError) Is(target error) bool {
	return target == ErrPaymentFailed
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

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

// NewNotOwnerError creates a new NotOwnerError
func NewNotOwnerError(id uint64, caller, owner string) error {
	return &NotOwnerError{ID: id, Caller: caller, Owner: owner}
}

// NewAuthorizationError creates a new AuthorizationError
func NewAuthorizationError(address, reason string) error {
	return &AuthorizationError{Address: address, Reason: reason}
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

// IsNotOwner checks if an error is a not owner error
func IsNotOwner(err error) bool {
	return errors.Is(err, ErrNotOwner)
}

// IsUnauthorized checks if an error is an authorization failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPaymentFailed checks if an error is a payment failure
func IsPaymentFailed(err error) bool {
	return errors.Is(err, ErrPaymentFailed)
}

// IsUninitialized checks if an error reports a never-initialized registry
func IsUninitialized(err error) bool {
	return errors.Is(err, ErrUninitialized)
}

// IsAlreadyInitialized checks if an error reports a second initialization
func IsAlreadyInitialized(err error) bool {
	return errors.Is(err, ErrAlreadyInitialized)
}

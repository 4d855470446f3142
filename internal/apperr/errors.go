// Package apperr defines the typed failures shared by the pricing, ledger and
// ghost packages:
//   - ValidationError: bad or missing caller input, reported verbatim
//   - NotFoundError: a referenced entity does not exist
//   - UpstreamError: the market-data provider failed or answered incompletely
//   - NotConfiguredError: provider credentials are absent
//
// Callers branch with errors.As or the Is* helpers.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation returns a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NotFound returns a NotFoundError for the given entity kind and id.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// UpstreamError reports a market-data provider failure.
type UpstreamError struct {
	Op  string
	Msg string
	Err error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": upstream failure"
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an UpstreamError for op.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// NotConfiguredError reports missing provider credentials.
type NotConfiguredError struct {
	Provider string
}

func (e *NotConfiguredError) Error() string {
	return e.Provider + " credentials not configured"
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsUpstream reports whether err is, or wraps, an UpstreamError.
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// IsNotConfigured reports whether err is, or wraps, a NotConfiguredError.
func IsNotConfigured(err error) bool {
	var target *NotConfiguredError
	return errors.As(err, &target)
}

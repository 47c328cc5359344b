// Package errors provides error handling for tip.
//
// This package re-exports github.com/cockroachdb/errors so every package
// wraps, annotates and inspects errors the same way:
//
//	// Create new error
//	err := errors.New("unsupported target")
//
//	// Wrap with context
//	if err := doc.QuerySelectorAll(sel); err != nil {
//	    return errors.Wrapf(err, "resolve target %q", sel)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "option names are case sensitive")
//
// Engine-specific failures are expressed as sentinels below. Wrap them to
// add context while keeping errors.Is checks working.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef

	// Mark makes errors.Is(err, reference) true without changing the message
	Mark = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrConfiguration indicates an option set that cannot be resolved,
	// most commonly an option name the engine does not recognise.
	ErrConfiguration = New("configuration error")

	// ErrInvalidTarget indicates a target specification that cannot be
	// turned into references (unsupported type, malformed selector).
	ErrInvalidTarget = New("invalid target")

	// ErrInvalidRequest indicates malformed input outside the engine itself
	// (scenario files, CLI arguments).
	ErrInvalidRequest = New("invalid request")

	// ErrNotFound indicates a lookup that found nothing.
	ErrNotFound = New("not found")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsInvalidTargetError checks if an error is or wraps ErrInvalidTarget
func IsInvalidTargetError(err error) bool {
	return err != nil && Is(err, ErrInvalidTarget)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewConfigurationError creates a configuration error with a formatted message
func NewConfigurationError(format string, args ...interface{}) error {
	return Wrap(ErrConfiguration, Newf(format, args...).Error())
}

// NewInvalidTargetError creates an invalid-target error with a formatted message
func NewInvalidTargetError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidTarget, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// Package errs holds the structured error taxonomy shared by the decoding,
// record building and export packages.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindInvalidLength: a fixed-width buffer had the wrong number of bytes.
	KindInvalidLength Kind = "InvalidLength"
	// KindSignature: a signature did not validate against its public key.
	KindSignature Kind = "SignatureError"
	// KindIdentifierMismatch: a claimed peer id disagrees with the one derived from the public key.
	KindIdentifierMismatch Kind = "IdentifierMismatch"
	// KindMalformedField: a required field is missing or outside its domain.
	KindMalformedField Kind = "MalformedField"
	// KindExport: the exporter produced something it cannot represent. Always a bug.
	KindExport Kind = "Export"
	// KindInternal: an invariant of this module was broken. Always a bug.
	KindInternal Kind = "Internal"
)

// Error is the structured error type.
//
// RuleID is a stable identifier (e.g. AMOUNT-LEN-001) naming the violated rule.
// Field names the offending input field when there is one.
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns a structured error without a cause.
func New(kind Kind, ruleID, field, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Field: field, Message: msg}
}

// Wrap returns a structured error carrying cause. A nil cause yields New.
func Wrap(kind Kind, ruleID, field, msg string, cause error) error {
	if cause == nil {
		return New(kind, ruleID, field, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Field: field, Message: msg, Cause: cause}
}

// EntryError tags an error with the position of the entry that produced it
// inside a response batch.
type EntryError struct {
	Batch string
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%d]: %v", e.Batch, e.Index, e.Err)
}

func (e *EntryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AtIndex wraps err as the failure of entry index in batch.
func AtIndex(batch string, index int, err error) error {
	if err == nil {
		return nil
	}
	return &EntryError{Batch: batch, Index: index, Err: err}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// IsBug reports whether err signals a defect in this module rather than bad input.
func IsBug(err error) bool {
	k := KindOf(err)
	return k == KindExport || k == KindInternal
}

// Index returns the batch index carried by err, if any.
func Index(err error) (int, bool) {
	var e *EntryError
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Index, true
}

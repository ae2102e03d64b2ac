// Package errors defines the node's error taxonomy: a fixed set of kinds
// (mirroring the original BeaconError enum) carried alongside a message and
// an optional wrapped cause, so callers can branch on kind with errors.As
// while still getting Go-idiomatic wrapping and Unwrap support.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind enumerates the taxonomy fixed by the error-handling design: Network,
// Consensus, Storage, Crypto, InvalidTransaction, InvalidBlock, Chaincode,
// Config, Io, Serialization, Timeout, NotFound, AlreadyExists,
// PermissionDenied, RateLimitExceeded, Internal.
type Kind int

const (
	Internal Kind = iota
	Network
	Consensus
	Storage
	Crypto
	InvalidTransaction
	InvalidBlock
	Chaincode
	Config
	Io
	Serialization
	Timeout
	NotFound
	AlreadyExists
	PermissionDenied
	RateLimitExceeded
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "Network"
	case Consensus:
		return "Consensus"
	case Storage:
		return "Storage"
	case Crypto:
		return "Crypto"
	case InvalidTransaction:
		return "InvalidTransaction"
	case InvalidBlock:
		return "InvalidBlock"
	case Chaincode:
		return "Chaincode"
	case Config:
		return "Config"
	case Io:
		return "Io"
	case Serialization:
		return "Serialization"
	case Timeout:
		return "Timeout"
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case PermissionDenied:
		return "PermissionDenied"
	case RateLimitExceeded:
		return "RateLimitExceeded"
	default:
		return "Internal"
	}
}

// Error is a taxonomy-tagged error.
type Error struct {
	Kind    Kind
	Msg     string
	Cause   error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an existing error, keeping it reachable via Unwrap.
func Wrap(kind Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: cause.Error(), Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, errors.New(Kind, "")) match purely on kind when the
// sentinel's Msg is empty; otherwise both Kind and Msg must match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

// KindOf extracts the Kind of err if it (or something it wraps) is a
// *Error, returning Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is re-exports the standard library's errors.Is for call-site convenience
// so package users don't need a second import alongside this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As re-exports the standard library's errors.As.
func As(err error, target any) bool { return stderrors.As(err, target) }

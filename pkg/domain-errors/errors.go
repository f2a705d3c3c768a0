// Package domainerrors defines the coded error taxonomy shared by services and
// transports. Services return *Error values; transports translate the code into
// a status and a structured failure body.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a failure kind. The string value is the wire name returned in
// the "error" field of failed action responses.
type Code string

const (
	CodeMissingField       Code = "MissingField"
	CodeMissingParameters  Code = "MissingParameters"
	CodeInvalidField       Code = "InvalidField"
	CodeInvalidWallet      Code = "InvalidWallet"
	CodeDuplicateVoter     Code = "DuplicateVoter"
	CodeAlreadyVoted       Code = "AlreadyVoted"
	CodeElectionNotFound   Code = "ElectionNotFound"
	CodeCandidateNotFound  Code = "CandidateNotFound"
	CodeVoterNotRegistered Code = "VoterNotRegistered"
	CodeElectionInactive   Code = "ElectionInactive"
	CodeUnauthorized       Code = "Unauthorized"
	CodeUnknownAction      Code = "UnknownAction"
	CodeBadRequest         Code = "BadRequest"
	CodeNotFound           Code = "NotFound"
	CodePersistenceFailure Code = "PersistenceFailure"
	CodeInternal           Code = "Internal"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// PublicMessage returns the message safe to show to callers. Internal errors
// never leak their details.
func PublicMessage(err error) string {
	var de *Error
	if !errors.As(err, &de) || de.Code == CodeInternal || de.Code == CodePersistenceFailure {
		return "internal error"
	}
	return de.Message
}

// ToHTTPStatus maps a code to the HTTP status used by transports.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeMissingField, CodeMissingParameters, CodeInvalidField, CodeInvalidWallet,
		CodeUnknownAction, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeElectionNotFound, CodeCandidateNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateVoter, CodeAlreadyVoted, CodeElectionInactive:
		return http.StatusConflict
	case CodeVoterNotRegistered:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

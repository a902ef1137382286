// Package errors provides coded domain errors for the chat core.
// Every business-rule failure carries a machine-readable Code so the
// presentation layer can decide how to render it.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected error.
	CodeUnknown Code = "UNKNOWN"

	// Authentication
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"
	CodeBadCredential    Code = "BAD_CREDENTIAL"
	CodeSessionActive    Code = "SESSION_ACTIVE"

	// Lookups
	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodeServerNotFound  Code = "SERVER_NOT_FOUND"
	CodeChannelNotFound Code = "CHANNEL_NOT_FOUND"
	CodeMessageNotFound Code = "MESSAGE_NOT_FOUND"
	CodeInvalidCode     Code = "INVALID_INVITE_CODE"

	// Authorization
	CodeMissingCapability Code = "MISSING_CAPABILITY"
	CodeOwnerOnly         Code = "OWNER_ONLY"

	// Conflicts
	CodeUsernameTaken    Code = "USERNAME_TAKEN"
	CodeChannelNameTaken Code = "CHANNEL_NAME_TAKEN"
	CodeAlreadyMember    Code = "ALREADY_MEMBER"

	// Input
	CodeEmptyName         Code = "EMPTY_NAME"
	CodeWeakPassword      Code = "WEAK_PASSWORD"
	CodeInvalidRole       Code = "INVALID_ROLE"
	CodeMessageTooLong    Code = "MESSAGE_TOO_LONG"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeSelfTarget        Code = "SELF_TARGET"
	CodeWrongChannelKind  Code = "WRONG_CHANNEL_KIND"

	// State
	CodeOwnerCannotLeave Code = "OWNER_CANNOT_LEAVE"
	CodeCannotTargetOwner Code = "CANNOT_TARGET_OWNER"
	CodeNotMember        Code = "NOT_MEMBER"
	CodeBanned           Code = "BANNED"
	CodeMuted            Code = "MUTED"
	CodeChannelFull      Code = "CHANNEL_FULL"
	CodeChannelLocked    Code = "CHANNEL_LOCKED"
	CodeAlreadyConnected Code = "ALREADY_CONNECTED"
	CodeNotConnected     Code = "NOT_CONNECTED"
)

// Kind groups codes into the categories the presentation layer cares about.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotAuthenticated
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInvalidInput
	KindStateConflict
)

// Kind maps a code to its category.
func (c Code) Kind() Kind {
	switch c {
	case CodeNotAuthenticated:
		return KindNotAuthenticated

	case CodeUserNotFound,
		CodeServerNotFound,
		CodeChannelNotFound,
		CodeMessageNotFound,
		CodeInvalidCode:
		return KindNotFound

	case CodeBadCredential,
		CodeMissingCapability,
		CodeOwnerOnly:
		return KindUnauthorized

	case CodeUsernameTaken,
		CodeChannelNameTaken,
		CodeAlreadyMember:
		return KindConflict

	case CodeEmptyName,
		CodeWeakPassword,
		CodeInvalidRole,
		CodeMessageTooLong,
		CodeInvalidInput,
		CodeSelfTarget,
		CodeWrongChannelKind:
		return KindInvalidInput

	case CodeSessionActive,
		CodeOwnerCannotLeave,
		CodeCannotTargetOwner,
		CodeNotMember,
		CodeBanned,
		CodeMuted,
		CodeChannelFull,
		CodeChannelLocked,
		CodeAlreadyConnected,
		CodeNotConnected:
		return KindStateConflict

	default:
		return KindUnknown
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

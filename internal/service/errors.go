package service

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a service failure; the HTTP layer maps it to a status.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// 错误码
const (
	CodeInvalidRequest     = "ERR_INVALID_REQUEST"
	CodeUnauthorized       = "ERR_UNAUTHORIZED"
	CodeForbidden          = "ERR_FORBIDDEN"
	CodeNotFound           = "ERR_NOT_FOUND"
	CodeInternalError      = "ERR_INTERNAL_ERROR"
	CodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	CodeEmailExists        = "ERR_EMAIL_EXISTS"
	CodeUsernameExists     = "ERR_USERNAME_EXISTS"
	CodeSlugExists         = "ERR_SLUG_EXISTS"
	CodeUserDisabled       = "ERR_USER_DISABLED"
	CodeUserNotFound       = "ERR_USER_NOT_FOUND"
	CodePostNotFound       = "ERR_POST_NOT_FOUND"
	CodeCommentNotFound    = "ERR_COMMENT_NOT_FOUND"
	CodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	CodeFileTypeNotAllowed = "ERR_FILE_TYPE_NOT_ALLOWED"
	CodeFileTooLarge       = "ERR_FILE_TOO_LARGE"
	CodeCannotChangeSelf   = "ERR_CANNOT_CHANGE_SELF"
)

// Error is a classified failure with a client safe message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details shown to the client.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidRequest, Message: message}
}

func ValidationCode(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Unauthorized(code, message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

func Forbidden(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Internal wraps an unexpected failure and records its stack.
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    CodeInternalError,
		Message: "Internal Server Error",
		Err:     pkgerrors.WithStack(err),
	}
}

// AsError returns the classified error inside err, if any.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	svcErr, ok := AsError(err)
	return ok && svcErr.Kind == kind
}

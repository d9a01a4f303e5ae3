package users

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	textCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeAccountInactive    = "ACCOUNT_INACTIVE"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenMalformed     = "TOKEN_MALFORMED"
)

// ErrDuplicateAccount is returned when a create collides with an existing email.
var ErrDuplicateAccount = goerrors.New("account with email already exists", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateAccount).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is returned by direct account lookups that miss.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is returned for both unknown emails and password
// mismatches so callers cannot probe which accounts exist.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountInactive is returned when credentials check out but the account
// has been deactivated.
var ErrAccountInactive = goerrors.New("user account is inactive", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for correctly signed but expired tokens.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers every non-expiry token failure: bad signature,
// wrong algorithm, garbage input.
var ErrTokenMalformed = goerrors.New("token is malformed or invalid", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is returned when a required string input is empty
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the low level bcrypt mismatch error
var ErrMismatchedHashAndPassword = goerrors.New("hashed password mismatch", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsDuplicateAccount will check for email uniqueness violations
func IsDuplicateAccount(err error) bool {
	return goerrors.Is(err, ErrDuplicateAccount)
}

var uniqueViolationProbes = []string{
	"UNIQUE constraint failed",
	"constraint failed: users.email",
	"duplicate key value violates unique constraint",
}

// IsUniqueViolation will check for a unique constraint hit anywhere along
// the error chain. The repository layer wraps driver errors in rich errors
// whose top-level message says nothing about the constraint, so the raw
// driver error has to be dug out link by link. Rich errors already
// classified as a conflict count as well.
func IsUniqueViolation(err error) bool {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if richErr, ok := current.(*goerrors.Error); ok {
			if richErr.TextCode == "DUPLICATE_KEY" || richErr.Category == goerrors.CategoryConflict {
				return true
			}
		}

		msg := current.Error()
		for _, probe := range uniqueViolationProbes {
			if strings.Contains(msg, probe) {
				return true
			}
		}
	}

	return false
}

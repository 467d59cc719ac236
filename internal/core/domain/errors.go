package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by services wraps exactly one of these,
// so handlers only need errors.Is against the category.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Location errors
var (
	ErrInvalidCode       = fmt.Errorf("%w: location code has no level", ErrInvalidInput)
	ErrLocationNotFound  = fmt.Errorf("%w: location not found", ErrNotFound)
	ErrLocationExists    = fmt.Errorf("%w: location name or code already exists", ErrConflict)
	ErrCodeTaken         = fmt.Errorf("%w: location code already exists", ErrConflict)
	ErrCodeAlreadySet    = fmt.Errorf("%w: location already has a code", ErrConflict)
	ErrCodeOutsideParent = fmt.Errorf("%w: code does not extend its parent code", ErrInvalidInput)
	ErrNoChildLevel      = fmt.Errorf("%w: location level has no child level", ErrInvalidInput)
)

// User errors
var (
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrUsernameTaken       = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrNothingUpdated      = fmt.Errorf("%w: no records were updated", ErrConflict)
	ErrRoleNotAssignable   = fmt.Errorf("%w: role cannot be assigned by this user", ErrForbidden)
	ErrNotDirectManager    = fmt.Errorf("%w: user is not managed by the requester", ErrForbidden)
	ErrLocationOutOfScope  = fmt.Errorf("%w: location is outside the managed location", ErrForbidden)
	ErrInvalidDeclareStart = fmt.Errorf("%w: declare window cannot start before today", ErrInvalidInput)
	ErrInvalidDeclareEnd   = fmt.Errorf("%w: declare window must end after it starts", ErrInvalidInput)
	ErrOldPasswordWrong    = fmt.Errorf("%w: old password is incorrect", ErrInvalidInput)
	ErrWeakPassword        = fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
)

// Survey errors
var (
	ErrCitizenNotFound    = fmt.Errorf("%w: citizen not found", ErrNotFound)
	ErrDuplicateIdentity  = fmt.Errorf("%w: identity number already recorded", ErrConflict)
	ErrInvalidBirthDate   = fmt.Errorf("%w: date of birth must be d/m/y or y/m/d", ErrInvalidInput)
	ErrUnknownHometown    = fmt.Errorf("%w: hometown is not a known city", ErrInvalidInput)
	ErrUnknownAddress     = fmt.Errorf("%w: address does not resolve to known locations", ErrInvalidInput)
	ErrInvalidGender      = fmt.Errorf("%w: gender must be Nam or Nữ", ErrInvalidInput)
	ErrMixedUnits         = fmt.Errorf("%w: location codes must share one level", ErrInvalidInput)
	ErrSurveyInactive     = fmt.Errorf("%w: user does not have survey rights", ErrForbidden)
	ErrOutsideWindow      = fmt.Errorf("%w: outside the declare window", ErrForbidden)
	ErrRecordOutOfScope   = fmt.Errorf("%w: record is outside the managed location", ErrForbidden)
	ErrEmptyKeyword       = fmt.Errorf("%w: keyword is empty", ErrInvalidInput)
	ErrInvalidSpreadsheet = fmt.Errorf("%w: spreadsheet cannot be read", ErrInvalidInput)
)

// Token errors
var (
	ErrTokenRevoked = fmt.Errorf("%w: token revoked", ErrTokenInvalid)
)

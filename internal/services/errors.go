// Package services defines the business logic for accounts, problems, votes,
// and comments. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Problem-related errors.
var (
	// ErrProblemNotFound indicates that the referenced problem does not exist.
	ErrProblemNotFound = errors.New("problem not found")

	// ErrProblemResolved is returned when a mutating operation targets a
	// problem that has already reached its terminal resolved state.
	ErrProblemResolved = errors.New("problem already resolved")

	// ErrAlreadyVoted is returned when a user attempts a second vote on the
	// same problem. The (user, problem) pair is unique.
	ErrAlreadyVoted = errors.New("vote already exists")

	// ErrTitleRequired is returned when a report is submitted with an empty
	// or whitespace-only title.
	ErrTitleRequired = errors.New("title is required")

	// ErrDescriptionRequired is returned when a report is submitted with an
	// empty or whitespace-only description.
	ErrDescriptionRequired = errors.New("description is required")

	// ErrCoordinatesRequired is returned when a report is submitted without
	// both latitude and longitude.
	ErrCoordinatesRequired = errors.New("coordinates are required")

	// ErrEmptyComment is returned when a comment is empty after trimming.
	ErrEmptyComment = errors.New("comment is empty")
)

// Account-related errors.
var (
	// ErrNameRequired is returned when registration is attempted with an
	// empty or whitespace-only name.
	ErrNameRequired = errors.New("name is required")

	// ErrEmailRequired is returned when registration is attempted with an
	// empty or whitespace-only email.
	ErrEmailRequired = errors.New("email is required")

	// ErrPasswordTooShort is returned when the registration password is
	// shorter than the 8-character minimum.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrEmailTaken indicates that an account with the given email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when a credential token is missing, malformed,
	// expired, or carries an unexpected signing method.
	ErrInvalidToken = errors.New("invalid or expired token")
)

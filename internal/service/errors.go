package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned on a failed login
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a deactivated user attempts to sign in
	ErrUserInactive = errors.New("user account is inactive")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrSelfDeletion is returned when a user tries to delete their own account
	ErrSelfDeletion = errors.New("users cannot delete their own account")

	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrDuplicateEmail is returned when creating a user with a taken email
	ErrDuplicateEmail = errors.New("email is already in use")

	// ErrDuplicateSlug is returned when a category slug already exists
	ErrDuplicateSlug = errors.New("category already exists")

	// ErrRequestNotFound is returned when a material request is not found
	ErrRequestNotFound = errors.New("material request not found")

	// ErrEmptyItems is returned when submitting a request without line items
	ErrEmptyItems = errors.New("a request must contain at least one item")

	// ErrIllegalTransition is returned when a status transition is not
	// allowed from the request's current status
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrCommentRequired is returned when rejecting without a comment
	ErrCommentRequired = errors.New("a comment is required to reject a request")

	// ErrRequestNotDeletable is returned when deleting a request past the
	// deletable statuses
	ErrRequestNotDeletable = errors.New("request can no longer be deleted")
)

package subscriber

import (
	"errors"

	"github.com/dnbdoctor/labelops/internal/domain"
)

// Sentinel errors for the subscriber service layer.
var (
	ErrNotFound      = errors.New("subscriber not found")
	ErrAlreadyExists = errors.New("subscriber already exists")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrInvalidStatus = errors.New("invalid subscriber status")
)

// ConflictError carries the structured details a duplicate-create returns,
// so the caller can offer an "update existing" path instead of failing.
type ConflictError struct {
	ExistingEmail string
	Status        domain.SubscriberStatus
}

func (e *ConflictError) Error() string { return ErrAlreadyExists.Error() }

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

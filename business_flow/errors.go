// Package businessflow contains the core business logic and use cases
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User/session errors
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")

	// Link errors
	ErrLinkNotFound     = errors.New("link not found")
	ErrLinkExpired      = errors.New("link has expired")
	ErrAliasNotFound    = errors.New("alias not found")
	ErrAliasTaken       = errors.New("alias is already taken")
	ErrAliasReserved    = errors.New("alias is reserved")
	ErrInvalidAlias     = errors.New("alias is invalid")
	ErrInvalidURL       = errors.New("url is invalid")
	ErrInvalidPixelType = errors.New("pixel extension must be png or gif")

	// LinkHub errors
	ErrLinkHubNotFound      = errors.New("linkhub not found")
	ErrCollaboratorExists   = errors.New("collaborator already exists")
	ErrCollaboratorNotFound = errors.New("collaborator not found")

	// Role/grant errors
	ErrUnknownRole    = errors.New("unknown role")
	ErrInvalidEntity  = errors.New("entity format is invalid for role")
	ErrAlreadyGranted = errors.New("role already granted to entity")

	// Permission errors
	ErrForbidden = errors.New("operation not permitted")

	// Organization errors
	ErrOrgNotFound    = errors.New("organization not found")
	ErrOrgNameTaken   = errors.New("organization name is already taken")
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("member already exists")
	ErrLastAdmin      = errors.New("organization must keep at least one admin")

	// Ticket errors
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrDuplicateTicket    = errors.New("an open ticket for this request already exists")
	ErrRoleAlreadyHeld    = errors.New("requested role is already held")
	ErrUnknownReason      = errors.New("unknown ticket reason")
	ErrTicketEntityNeeded = errors.New("entity is required for this reason")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

func IsLinkExpired(err error) bool {
	return errors.Is(err, ErrLinkExpired)
}

func IsAliasNotFound(err error) bool {
	return errors.Is(err, ErrAliasNotFound)
}

func IsAliasTaken(err error) bool {
	return errors.Is(err, ErrAliasTaken)
}

func IsAliasReserved(err error) bool {
	return errors.Is(err, ErrAliasReserved)
}

func IsInvalidAlias(err error) bool {
	return errors.Is(err, ErrInvalidAlias)
}

func IsInvalidURL(err error) bool {
	return errors.Is(err, ErrInvalidURL)
}

func IsLinkHubNotFound(err error) bool {
	return errors.Is(err, ErrLinkHubNotFound)
}

func IsCollaboratorExists(err error) bool {
	return errors.Is(err, ErrCollaboratorExists)
}

func IsUnknownRole(err error) bool {
	return errors.Is(err, ErrUnknownRole)
}

func IsInvalidEntity(err error) bool {
	return errors.Is(err, ErrInvalidEntity)
}

func IsAlreadyGranted(err error) bool {
	return errors.Is(err, ErrAlreadyGranted)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsOrgNotFound(err error) bool {
	return errors.Is(err, ErrOrgNotFound)
}

func IsOrgNameTaken(err error) bool {
	return errors.Is(err, ErrOrgNameTaken)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsMemberExists(err error) bool {
	return errors.Is(err, ErrMemberExists)
}

func IsLastAdmin(err error) bool {
	return errors.Is(err, ErrLastAdmin)
}

func IsTicketNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

func IsDuplicateTicket(err error) bool {
	return errors.Is(err, ErrDuplicateTicket)
}

func IsRoleAlreadyHeld(err error) bool {
	return errors.Is(err, ErrRoleAlreadyHeld)
}

func IsUnknownTicketReason(err error) bool {
	return errors.Is(err, ErrUnknownReason)
}

func IsTicketEntityNeeded(err error) bool {
	return errors.Is(err, ErrTicketEntityNeeded)
}

func IsCollaboratorNotFound(err error) bool {
	return errors.Is(err, ErrCollaboratorNotFound)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

package auctionerrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Repository-level errors
var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNoBids           = errors.New("no bids found for listing")
)

// Business logic errors
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrAuctionClosed  = errors.New("auction is closed")
	ErrNotCreator     = errors.New("only the listing creator may close the auction")
	ErrInvalidListing = errors.New("invalid listing")
	ErrInvalidComment = errors.New("invalid comment")
)

// Auth errors
var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrPasswordMismatch  = errors.New("password and confirmation do not match")
	ErrAuthFailure       = errors.New("invalid username or password")
)

// FieldErrors maps a form field name to the reason it was rejected. It is
// wrapped together with ErrInvalidListing or ErrInvalidComment so callers
// can both match the sentinel and report the offending fields.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return strings.Join(parts, "; ")
}

// Invalid wraps sentinel and fe into a single error matchable with
// errors.Is(err, sentinel) and extractable with Fields.
func Invalid(sentinel error, fe FieldErrors) error {
	return fmt.Errorf("%w - %w", sentinel, fe)
}

// Fields extracts the FieldErrors from a validation error, if present.
func Fields(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

package service

import (
	"net/http"

	commonerrors "github.com/screentime-labs/tracker/backend/internal/common/errors"
)

var (
	ErrMissingFields = commonerrors.NewDomainError(
		"MISSING_FIELDS",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"missing required fields",
	)

	ErrInvalidTimeLimit = commonerrors.NewDomainError(
		"INVALID_TIME_LIMIT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"time_limit must be a positive number of minutes",
	)

	ErrInvalidTimeUsed = commonerrors.NewDomainError(
		"INVALID_TIME_USED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"time_used must be a non-negative number of minutes",
	)

	// The create path treats an absent owning account as bad input rather
	// than a not-found lookup: the caller supplied an account id that does
	// not exist.
	ErrAccountAbsent = commonerrors.NewDomainError(
		"ACCOUNT_NOT_FOUND",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"account does not exist",
	)

	ErrWebsiteExists = commonerrors.NewDomainError(
		"WEBSITE_EXISTS",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"website is already tracked for this account",
	)

	// Absence and ownership mismatch are deliberately indistinguishable.
	ErrWebsiteNotFound = commonerrors.NewDomainError(
		"WEBSITE_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"website not found or not owned by user",
	)
)

package profiles

import "osapio-backend/internal/shared/apperr"

var (
	ErrNotFound = apperr.New(apperr.KindNotFound, "profile_not_found", "User profile not found")
	ErrExists   = apperr.New(apperr.KindInternal, "profile_exists", "User profile already exists")
	ErrInvalid  = apperr.New(apperr.KindValidation, "validation_error", "Invalid profile update")
)

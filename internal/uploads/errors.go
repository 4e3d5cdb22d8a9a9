package uploads

import "osapio-backend/internal/shared/apperr"

var (
	ErrNotFound    = apperr.New(apperr.KindNotFound, "upload_not_found", "Upload not found or access denied")
	ErrInvalid     = apperr.New(apperr.KindValidation, "validation_error", "Invalid upload")
	ErrTooLarge    = apperr.New(apperr.KindPayloadTooLarge, "payload_too_large", "File too large (max 10MB)")
	ErrUnsupported = apperr.New(apperr.KindValidation, "unsupported_file_type", "Unsupported file type. Allowed: pdf, xml, txt, csv, xlsx, xls")
	ErrBadStatus   = apperr.New(apperr.KindValidation, "invalid_status", "analysis_status must be one of pending, processing, completed, failed")
)

package contracts

import "errors"

// ErrorCode values carried in ErrorDetail.
const (
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeInvalidContract = "INVALID_CONTRACT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeDocument        = "DOCUMENT_ERROR"
	CodeProcessing      = "PROCESSING_ERROR"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeNotFound        = "NOT_FOUND"
)

var (
	// ErrNotAContract is returned when validation rejects a document.
	ErrNotAContract = errors.New("document does not appear to be a contract")
	// ErrAmbiguousVerdict is returned when the AI validator answers neither true nor false.
	ErrAmbiguousVerdict = errors.New("validator response was not true or false")
)

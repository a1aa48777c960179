// Package handlers defines the HTTP error codes of the check-in API.
//
// Every error response carries one of these codes in the ErrorResponse
// envelope. Clients branch on the code; the message is for display. Codes
// are lower snake_case.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "profile_not_found",
//	  "message": "no profile for this user"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Turns
	ErrCodeProfileNotFound   = "profile_not_found"
	ErrCodeMessageEmpty      = "message_empty"
	ErrCodeMessageTooLong    = "message_too_long"
	ErrCodeInvalidDate       = "invalid_date"
	ErrCodeInvalidLLMOutput  = "invalid_model_output"
	ErrCodePersistenceFailed = "persistence_failed"

	// Reads and triage
	ErrCodeListFailed    = "list_failed"
	ErrCodeInvalidStatus = "invalid_status"
	ErrCodeRollupFailed  = "rollup_failed"
)

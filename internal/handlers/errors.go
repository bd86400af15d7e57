package handlers

// Error Codes
const (
	ErrCodeInvalidDirection   = "invalid_direction"
	ErrCodeInvalidMode        = "invalid_mode"
	ErrCodeInvalidRequestBody = "invalid_request_body"
	ErrCodeInvalidStatus      = "invalid_status"
	ErrCodeMissingJobID       = "missing_job_id"
	ErrCodeJobNotFound        = "job_not_found"
	ErrCodeUpdateFailed       = "update_failed"
	ErrCodeCalendarLoadFailed = "calendar_load_failed"
	ErrCodeStaffFetchFailed   = "staff_fetch_failed"
	ErrCodeUnknown            = "unknown_error"
)

// ErrorMessages maps error codes to user-friendly messages
var ErrorMessages = map[string]string{
	ErrCodeInvalidDirection:   "Direction must be prev or next.",
	ErrCodeInvalidMode:        "View mode must be day, week or month.",
	ErrCodeInvalidRequestBody: "The request body could not be read.",
	ErrCodeInvalidStatus:      "Status must be scheduled, in_progress, completed or cancelled.",
	ErrCodeMissingJobID:       "No job specified.",
	ErrCodeJobNotFound:        "Job not found.",
	ErrCodeUpdateFailed:       "Failed to update the job. Please try again.",
	ErrCodeCalendarLoadFailed: "Failed to load the calendar. Please try again.",
	ErrCodeStaffFetchFailed:   "Failed to load staff. Please try again.",
	ErrCodeUnknown:            "An unknown error occurred.",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return ErrorMessages[ErrCodeUnknown]
}

package httputil

// Machine-readable error codes returned alongside human-readable messages.
const (
	CodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeEmailAlreadyExists  = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeMissingAuth         = "MISSING_AUTH"
	CodeInvalidAuthHeader   = "INVALID_AUTH_HEADER"
	CodeSessionInvalid      = "SESSION_INVALID"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

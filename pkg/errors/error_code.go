package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidDateFormat    ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidParameter     ErrorCode = 102
	ErrCodeUnknownAsset         ErrorCode = 103
	ErrCodeInvalidProvider      ErrorCode = 104
	ErrCodeInvalidFormat        ErrorCode = 105

	// Provider errors (200-299)
	ErrCodeProviderFetchFailed ErrorCode = 200
	ErrCodeEmptyResult         ErrorCode = 201
	ErrCodeProviderParseFailed ErrorCode = 202

	// Export errors (300-399)
	ErrCodeExportFailed   ErrorCode = 300
	ErrCodeWriterNotReady ErrorCode = 301
)

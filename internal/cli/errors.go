package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	ErrConfigInvalid   = "CONFIG_INVALID"
	ErrStoreError      = "STORE_ERROR"
	ErrInvalidInput    = "INVALID_INPUT"
	ErrRowOutOfRange   = "ROW_OUT_OF_RANGE"
	ErrNotFavorite     = "NOT_FAVORITE"
	ErrActionFailed    = "ACTION_FAILED"
	ErrActivityUnknown = "ACTIVITY_NOT_FOUND"
	ErrFileReadError   = "FILE_READ_ERROR"
	ErrFileWriteError  = "FILE_WRITE_ERROR"
	ErrAlreadyImported = "ALREADY_IMPORTED"
	ErrWatchFailed     = "WATCH_FAILED"
)

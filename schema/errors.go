package schema

import "errors"

var (
	// ErrMissingArgument indicates a command parameter was not supplied.
	ErrMissingArgument = errors.New("missing parameter")
	// ErrInvalidNumber indicates a numeric argument could not be parsed.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidNumericInput is the catch-all for numeric failures without a more specific cause.
	ErrInvalidNumericInput = errors.New("invalid numeric input")
	// ErrNegativeRoot indicates a square root of a negative number was requested.
	ErrNegativeRoot = errors.New("square root of a negative number is not defined")
	// ErrNonPositiveLog indicates a logarithm of zero or a negative number was requested.
	ErrNonPositiveLog = errors.New("logarithm is only defined for positive numbers")
	// ErrInvalidDecimal indicates an unparsable decimal integer.
	ErrInvalidDecimal = errors.New("invalid decimal number")
	// ErrInvalidHex indicates an unparsable hexadecimal string.
	ErrInvalidHex = errors.New("invalid HEX string")

	// ErrQueryUnavailable indicates no collaborator is registered for a query command.
	ErrQueryUnavailable = errors.New("command not available on this system")
	// ErrFileNotFound indicates TYPE could not find the requested file.
	ErrFileNotFound = errors.New("file not found")
	// ErrHostNotResolved indicates PING could not resolve the target.
	ErrHostNotResolved = errors.New("host could not be resolved")

	// ErrUpdateUnavailable indicates no update engine is configured.
	ErrUpdateUnavailable = errors.New("update not configured")
	// ErrDownloadFailed indicates the update download failed; the executable is untouched.
	ErrDownloadFailed = errors.New("update download failed")
	// ErrBackupFailed indicates the running executable could not be moved to its backup path.
	ErrBackupFailed = errors.New("current version could not be renamed")
	// ErrActivateFailed indicates the new executable could not be moved into place; the old version was restored.
	ErrActivateFailed = errors.New("update could not be activated; previous version restored")
	// ErrRollbackFailed indicates the previous version could not be restored and manual recovery is required.
	ErrRollbackFailed = errors.New("rollback failed; manual recovery required")
	// ErrRestartUnavailable indicates the host cannot restart the process.
	ErrRestartUnavailable = errors.New("restart not supported by this host")
)

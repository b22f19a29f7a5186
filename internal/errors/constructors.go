package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *DevPulseError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *DevPulseError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationError(message string) *DevPulseError {
	return New(CategoryValidation, SeverityWarning, message)
}

func ValidationFailed(field, reason string) *DevPulseError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Resource errors

func NotFound(resource string) *DevPulseError {
	return New(CategoryNotFound, SeverityWarning, resource+" not found")
}

func AlreadyExists(resource string) *DevPulseError {
	return New(CategoryAlreadyExists, SeverityWarning, resource+" already exists")
}

// Scan errors

func ScanFailed(path string, cause error) *DevPulseError {
	return Wrap(cause, CategoryScan, SeverityError, "repository scan failed").
		WithContext("path", path)
}

// Git errors

func GitOpenError(path string, cause error) *DevPulseError {
	return Wrap(cause, CategoryGit, SeverityError, "failed to open repository").
		WithContext("path", path)
}

func GitPullError(path string, cause error) *DevPulseError {
	return WrapRetryable(cause, CategoryGit, SeverityWarning, "repository pull failed").
		WithContext("path", path)
}

// Storage errors

func StorageError(operation string, cause error) *DevPulseError {
	return Wrap(cause, CategoryStorage, SeverityError, "storage operation failed").
		WithContext("operation", operation)
}

// Runtime errors

func DaemonError(message string) *DevPulseError {
	return New(CategoryDaemon, SeverityError, message)
}

func InternalError(message string, cause error) *DevPulseError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}

// WrapError wraps an existing error with a new DevPulseError at error severity.
func WrapError(err error, category ErrorCategory, message string) *DevPulseError {
	return &DevPulseError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

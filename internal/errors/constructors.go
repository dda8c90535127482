package errors

// Convenience functions for common error patterns

// Source errors

// ResourceNotFound reports a source path that does not resolve to content.
func ResourceNotFound(path string, cause error) *ConvertError {
	return Wrap(cause, CategoryNotFound, SeverityFatal, "Could not find path: "+path).
		WithContext("path", path)
}

// InvalidInputKind rejects a path before any parsing happens, e.g. a directory
// or a file whose name does not end in "Dockerfile".
func InvalidInputKind(path, reason string) *ConvertError {
	return New(CategoryInvalidInput, SeverityFatal, reason).
		WithContext("path", path)
}

// Output errors

func WriteFailed(path string, cause error) *ConvertError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "failed to write notebook").
		WithContext("path", path)
}

func ReadFailed(path string, cause error) *ConvertError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "failed to read source").
		WithContext("path", path)
}

func ViewerFailed(path string, cause error) *ConvertError {
	return Wrap(cause, CategoryViewer, SeverityWarning, "failed to open notebook").
		WithContext("path", path)
}

// Config errors

func ConfigNotFound(path string) *ConvertError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(field, reason string) *ConvertError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration: "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Backend errors

func BackendError(url string, cause error) *ConvertError {
	return Wrap(cause, CategoryNetwork, SeverityFatal, "contents API request failed").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *ConvertError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}

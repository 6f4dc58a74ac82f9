package webdriver

import "errors"

// ConnError is a transport-level failure reaching the WebDriver
// endpoint: refused, reset, or timed out before a protocol response.
// It marks the error as retryable for readiness polling; every other
// error class from this package is permanent.
type ConnError struct {
	Endpoint string
	Err      error
}

func (e *ConnError) Error() string {
	return "connecting to " + e.Endpoint + ": " + e.Err.Error()
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

// IsConnError reports whether err is (or wraps) a transport-level
// connection failure.
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}

// Package errs defines the subsystem's three error kinds. Callers branch
// with errors.As; message text is for logs, not for matching.
package errs

import "fmt"

// PrayerDataError reports a calculator failure or malformed cached data.
type PrayerDataError struct {
	Op    string
	Cause error
}

func (e *PrayerDataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("prayer data: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("prayer data: %s", e.Op)
}

func (e *PrayerDataError) Unwrap() error { return e.Cause }

func PrayerData(op string, cause error) *PrayerDataError {
	return &PrayerDataError{Op: op, Cause: cause}
}

// LocationServiceError reports a GPS/permission failure from the location
// source, carrying the original cause.
type LocationServiceError struct {
	Op    string
	Cause error
}

func (e *LocationServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("location service: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("location service: %s", e.Op)
}

func (e *LocationServiceError) Unwrap() error { return e.Cause }

func LocationService(op string, cause error) *LocationServiceError {
	return &LocationServiceError{Op: op, Cause: cause}
}

// PersistenceError reports a key-value or database read/write failure.
type PersistenceError struct {
	Op    string
	Key   string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("persistence: %s %q: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func Persistence(op, key string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Key: key, Cause: cause}
}

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound means the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrCredentialMissing means the credential variable is unset or empty.
	ErrCredentialMissing = errors.New("credential not set")

	// ErrNoServers means the configuration names no enabled tool server.
	ErrNoServers = errors.New("no enabled tool servers configured")
)

// Error is a configuration failure. Item names the file or variable at
// fault. These errors are never retried.
type Error struct {
	Item string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Item, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is, or wraps, a configuration Error.
func IsConfigError(err error) bool {
	var cfgErr *Error
	return errors.As(err, &cfgErr)
}

package config

import (
	"errors"
	"fmt"
)

// Sentinel errors. Failures carry them inside a *SettingError, so test
// with errors.Is.
var (
	ErrSettingNotFound  = errors.New("setting not found")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidPath      = errors.New("invalid setting path")
)

// SettingError reports a problem with one setting.
type SettingError struct {
	Path   string // Dotted setting path, e.g. "codec.format"
	Reason string // What is wrong, e.g. "expected int, got string"
	Err    error  // One of the sentinels above
}

func (e *SettingError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("setting %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("setting %s: %v: %s", e.Path, e.Err, e.Reason)
}

func (e *SettingError) Unwrap() error {
	return e.Err
}

func notFound(path string) error {
	return &SettingError{Path: path, Err: ErrSettingNotFound}
}

func invalidPath(path string) error {
	return &SettingError{Path: path, Err: ErrInvalidPath}
}

func typeMismatch(path, want string, got any) error {
	return &SettingError{
		Path:   path,
		Reason: fmt.Sprintf("expected %s, got %s", want, typeName(got)),
		Err:    ErrTypeMismatch,
	}
}

func invalid(path string, value any, reason string) error {
	return &SettingError{
		Path:   path,
		Reason: fmt.Sprintf("%s (value: %v)", reason, value),
		Err:    ErrValidationFailed,
	}
}

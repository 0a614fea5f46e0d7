package config

import (
	"errors"
	"fmt"
)

var ErrConfiguration = errors.New("configuration error")

// ConfigurationError is returned when a required setting is missing or invalid.
// It is always produced before any request is sent.
type ConfigurationError struct {
	original error
	Setting  string
	Message  string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s %s_%s: %s", ErrConfiguration, EnvPrefix, e.Setting, e.Message)
	if e.original != nil {
		msg += ": " + e.original.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.original
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Errorf wraps err as a configuration error for the given setting.
func Errorf(setting string, err error, format string, a ...any) error {
	return &ConfigurationError{
		original: err,
		Setting:  setting,
		Message:  fmt.Sprintf(format, a...),
	}
}

func missing(setting string) error {
	return &ConfigurationError{Setting: setting, Message: "missing required setting"}
}

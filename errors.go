package buddhabrot

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig  = errors.New("invalid config")
	ErrUnknownVariant = errors.New("unknown iteration variant")
	ErrUnknownTier    = errors.New("unknown tier")
	ErrUnknownRegion  = errors.New("unknown region")
	ErrUnknownFormat  = errors.New("unknown image format")
)

// ConfigError names the offending configuration field.
// It matches ErrInvalidConfig under errors.Is.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

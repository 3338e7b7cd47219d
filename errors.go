package omnicache

import (
	"errors"
	"fmt"
)

var (
	ErrNilDriver      = errors.New("omnicache: driver is required")
	ErrNilCodec       = errors.New("omnicache: codec is required")
	ErrNilRegistry    = errors.New("omnicache: registry is required")
	ErrRegistryClosed = errors.New("omnicache: registry is closed")
)

// ConfigError reports that a (path, key) pair could not be resolved into
// driver settings. It is fatal for facade construction.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("omnicache: load config %q key %q: %v", e.Path, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DriverError reports that the registry could not construct a driver.
// Errors from operations on an already constructed driver are never wrapped.
type DriverError struct {
	Type DriverType
	Err  error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("omnicache: build %s driver: %v", e.Type, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// CodecError reports a value that could not be encoded or decoded.
type CodecError struct {
	Op  string // "encode" or "decode"
	Key string // logical key
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("omnicache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a valid single-entity request with zero results. Search
// operations return empty result sets instead.
var ErrNotFound = errors.New("not found")

// ValidationError is malformed or insufficient caller input. Never retried.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConfigError is missing or unusable configuration (credentials, base URLs).
// Fails fast: no retry, no cache fallback.
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return e.Msg }

// UpstreamErrorKind separates transport-level failure from a response that
// arrived but could not be understood. Both trigger stale-cache fallback.
type UpstreamErrorKind string

const (
	UpstreamUnavailable UpstreamErrorKind = "unavailable"
	UpstreamBadData     UpstreamErrorKind = "bad_data"
)

// UpstreamError carries a structured upstream failure: which service, which
// operation, and (where available) the HTTP status and raw body.
type UpstreamError struct {
	Service string
	Op      string
	Kind    UpstreamErrorKind
	Status  int
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (status=%d)", e.Service, e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Service, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Op, e.Kind)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is any upstream failure (either kind).
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

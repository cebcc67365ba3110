package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies a failure for HTTP mapping and retry policy.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindAuth           Kind = "auth_error"
	KindQuotaExceeded  Kind = "quota_exceeded"
	KindNoMasterResume Kind = "no_master_resume"
	KindUpstreamModel  Kind = "upstream_model_error"
	KindRender         Kind = "render_error"
	KindNotFound       Kind = "not_found"
	KindStorage        Kind = "storage_error"
	KindInternal       Kind = "internal_error"
)

// Fault wraps an error with its classification.
type Fault struct {
	Kind      Kind
	Err       error
	Transient bool
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// New wraps err with the given kind.
func New(kind Kind, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Fault{Kind: kind, Err: err}
}

// Newf wraps a formatted message with the given kind.
func Newf(kind Kind, format string, args ...any) error {
	return &Fault{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Transient wraps err with the given kind and marks it retryable.
func Transient(kind Kind, err error) error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Fault{Kind: kind, Err: err, Transient: true}
}

// KindOf returns the classification of err, or KindInternal when unclassified.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether a pipeline stage may retry err.
// Validation, auth, quota and not-found failures are never retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var f *Fault
	if errors.As(err, &f) {
		switch f.Kind {
		case KindUpstreamModel:
			return true
		case KindRender:
			return f.Transient
		default:
			return false
		}
	}
	return transientNetwork(err)
}

// transientNetwork mirrors the upstream-failure heuristics used for the
// model client: timeouts, 5xx hints and connection drops.
func transientNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "client.timeout") {
		return true
	}
	return false
}

// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrNoMetrics is returned when a record carries no usable CVSS metric.
	ErrNoMetrics = errors.New("no CVSS metrics")
	// ErrAwaitingAnalysis is returned for unscored CVEs NIST has not
	// analysed yet. It matches ErrNoMetrics.
	ErrAwaitingAnalysis = fmt.Errorf("%w: %s", ErrNoMetrics, StatusAwaitingAnalysis)
	// ErrMalformedResponse is returned when a 200 body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrMissingAPIKey is returned when a source that requires a key has none.
	ErrMissingAPIKey = errors.New("API key required")
	// ErrBreakerOpen is wrapped in a ConnectivityError when requests to a
	// source are suspended after repeated connection failures.
	ErrBreakerOpen = errors.New("requests suspended after repeated connection failures")
)

// NotFoundError reports that a source has no record for a CVE.
type NotFoundError struct {
	Source string
	CVEID  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in %s", e.CVEID, e.Source)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error connecting to %s - %d", e.Source, e.Code)
}

// ConnectivityError wraps transport-level failures: refused connections,
// timeouts, and an open circuit breaker.
type ConnectivityError struct {
	Source string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("unable to connect to %s: %v", e.Source, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is or wraps a *ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

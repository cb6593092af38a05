// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CVE-2024-1234", r.URL.Query().Get("cve"))
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		_, _ = w.Write([]byte(`{"total": 3}`))
	}))
	defer srv.Close()

	f := NewFetcher("Test", Options{Timeout: time.Second})
	var got struct {
		Total int `json:"total"`
	}
	err := f.GetJSON(context.Background(), srv.URL, url.Values{"cve": {"CVE-2024-1234"}},
		http.Header{"accept": {"application/json"}}, &got)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
}

func TestFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher("Test", Options{Timeout: time.Second})
	var dst map[string]any
	err := f.GetJSON(context.Background(), srv.URL, nil, nil, &dst)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, "error connecting to Test - 403", se.Error())
}

func TestFetcher_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	f := NewFetcher("Test", Options{Timeout: time.Second})
	var dst map[string]any
	err := f.GetJSON(context.Background(), srv.URL, nil, nil, &dst)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFetcher_ConnectivityAndBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	f := NewFetcher("Test", Options{Timeout: time.Second})
	var dst map[string]any
	for i := 0; i < breakerTrips; i++ {
		err := f.GetJSON(context.Background(), addr, nil, nil, &dst)
		require.True(t, IsConnectivity(err), "attempt %d: got %v", i, err)
	}

	// The breaker is open now and fails fast, still as a connectivity error.
	err := f.GetJSON(context.Background(), addr, nil, nil, &dst)
	require.True(t, IsConnectivity(err))
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestFetcher_HalfOpenAdmitsAllWorkers(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if failing.Load() {
			if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
				conn.Close()
			}
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	const workers = 4
	f := NewFetcher("Test", Options{Timeout: time.Second, Concurrency: workers, Cooldown: 50 * time.Millisecond})
	for i := 0; i < breakerTrips; i++ {
		var dst map[string]any
		require.True(t, IsConnectivity(f.GetJSON(context.Background(), srv.URL, nil, nil, &dst)))
	}
	var dst map[string]any
	require.ErrorIs(t, f.GetJSON(context.Background(), srv.URL, nil, nil, &dst), ErrBreakerOpen)

	failing.Store(false)
	time.Sleep(100 * time.Millisecond)

	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dst map[string]any
			errs <- f.GetJSON(context.Background(), srv.URL, nil, nil, &dst)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestFetcher_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher("Test", Options{Timeout: time.Second})
	var dst map[string]any
	err := f.GetJSON(ctx, srv.URL, nil, nil, &dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsConnectivity(err))
}

func TestNotFoundError_Is(t *testing.T) {
	err := error(&NotFoundError{Source: "NIST NVD", CVEID: "CVE-2024-0001"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "CVE-2024-0001 not found in NIST NVD", err.Error())
}

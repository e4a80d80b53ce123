// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 and 503 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-supplied Retry-After may make us wait.
var MaxRetryAfter = 60 * time.Second

const defaultMaxRetries = 3

// statusError marks a response whose status code is worth retrying.
type statusError struct {
	code       int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.code)
}

// Retryable reports whether an HTTP status code signals a transient
// server-side condition (rate limiting or temporary unavailability).
func Retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// RetryAfter parses a Retry-After header given in seconds. HTTP-date values
// and garbage yield zero so the caller falls back to exponential backoff.
func RetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) and 503 (Service Unavailable). The delay honors Retry-After when
// the server sends one and otherwise doubles from RetryBaseDelay.
//
// When maxRetries is 0 the default (3) is used. Transport errors are not
// retried. On each retryable response the body is drained and closed before
// the next attempt. If the context is cancelled during a backoff wait the
// function returns ctx.Err(). After exhausting retries the last retryable
// response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var last *http.Response
	err := retry.Do(
		func() error {
			if last != nil {
				io.Copy(io.Discard, last.Body)
				last.Body.Close()
				last = nil
			}
			resp, err := client.Do(req.Clone(ctx))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			last = resp
			if !Retryable(resp.StatusCode) {
				return nil
			}
			return &statusError{code: resp.StatusCode, retryAfter: RetryAfter(resp.Header)}
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)+1),
		retry.Delay(RetryBaseDelay),
		retry.DelayType(backoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("retrying request", "url", req.URL.Redacted(), "attempt", n+1, "max", maxRetries, "reason", err)
		}),
	)

	var se *statusError
	switch {
	case err == nil, errors.As(err, &se):
		return last, nil
	default:
		if last != nil {
			last.Body.Close()
		}
		return nil, err
	}
}

// backoff prefers the server's Retry-After and falls back to doubling.
func backoff(n uint, err error, cfg *retry.Config) time.Duration {
	var se *statusError
	if errors.As(err, &se) && se.retryAfter > 0 {
		return se.retryAfter
	}
	return retry.BackOffDelay(n, err, cfg)
}

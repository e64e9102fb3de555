package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// IsRetryableError reports whether a failed event should be redelivered, plus a
// short label for logs and dead-letter headers.
func IsRetryableError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	// malformed payloads never get better
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return false, "json_decode_error"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return false, "json_decode_error"
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return false, "not_found"
	}
	if errors.Is(err, redis.Nil) {
		return false, "not_found"
	}

	if errors.Is(err, context.Canceled) {
		return false, "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, "timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key"):
		return false, "duplicate_key"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"):
		return true, "connection_error"
	case strings.Contains(msg, "LOADING"), strings.Contains(msg, "READONLY"):
		return true, "redis_unavailable"
	}

	return false, "unknown_error"
}

// ShouldRetry reports whether attempt retryCount may be redelivered.
func ShouldRetry(retryCount int64, maxRetries int64, isRetryable bool) bool {
	if !isRetryable {
		return false
	}
	return retryCount <= maxRetries
}

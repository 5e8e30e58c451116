// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response handling for the data
// source clients.
//
// Response reads are capped at MaxResponseSize so a misbehaving server
// cannot exhaust memory. Non-2xx responses become a [StatusError]
// carrying a short excerpt of the body for diagnostics.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxResponseSize bounds JSON response body reads: 64 MiB.
const MaxResponseSize int64 = 64 << 20

// maxErrorExcerpt bounds the body text kept in a StatusError.
const maxErrorExcerpt = 4 << 10

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	// Body is the start of the response body, whitespace-trimmed.
	Body string
}

func (err *StatusError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("HTTP %d", err.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", err.StatusCode, err.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, statusCode int) bool {
	var statusError *StatusError
	return errors.As(err, &statusError) && statusError.StatusCode == statusCode
}

// CheckStatus returns a *StatusError for a non-2xx response, reading
// (and consuming) an excerpt of its body. It returns nil otherwise and
// leaves the body untouched.
func CheckStatus(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	return &StatusError{StatusCode: response.StatusCode, Body: ErrorBody(response.Body)}
}

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON response body (up to MaxResponseSize
// bytes) into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody returns the start of an error response body for messages.
// Read errors are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorExcerpt))
	return strings.TrimSpace(string(data))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single-shot HTTP GET used by the fetcher.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps how much of a response body Get will read. Anything
// past it is silently cut off.
const maxBodyBytes = 32 << 20

// ErrUnexpectedStatus is wrapped by Get when the server answers outside
// the 2xx range.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// StatusError carries the status code of a rejected response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v %d", ErrUnexpectedStatus, e.Code)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Get issues one GET request and returns the response body. There is no
// retry: a transport error, a timeout (the client's Timeout bounds the
// whole exchange), or a non-2xx status is returned as an error and the
// caller decides what to skip.
func Get(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

package merchant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	content "google.golang.org/api/content/v2.1"
	"google.golang.org/api/googleapi"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// toRemoteError attaches the HTTP status of a Google API failure.
// Transport failures carry status 0.
func toRemoteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		if gerr.Code == http.StatusTooManyRequests {
			err = fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
		return &domain.RemoteError{Status: gerr.Code, Message: msg, RetryAfter: retryAfter(gerr), Err: err}
	}
	return &domain.RemoteError{Message: err.Error(), Err: err}
}

// retryAfter reads the Retry-After header of a 429, in whole seconds.
func retryAfter(gerr *googleapi.Error) time.Duration {
	if gerr.Code != http.StatusTooManyRequests || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// entryErrors flattens the per-entry errors of a batch response.
// A non-nil list always yields at least one message.
func entryErrors(errs *content.Errors) []string {
	if errs == nil {
		return nil
	}
	var out []string
	for _, e := range errs.Errors {
		if e != nil && e.Message != "" {
			out = append(out, e.Message)
		}
	}
	if len(out) == 0 {
		msg := errs.Message
		if msg == "" {
			msg = "rejected with code " + strconv.FormatInt(errs.Code, 10)
		}
		out = append(out, msg)
	}
	return out
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fogswap/pkg/client"
	"fogswap/pkg/types"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks fogswap/pkg/tracker TransactionSource

// TransactionSource fetches the current server-side record of a swap
type TransactionSource interface {
	GetTransactionInfo(ctx context.Context, id string) (*types.TransactionInfo, error)
}

// Tracker polls a swap until its status reaches one of the stop statuses
type Tracker struct {
	source   TransactionSource
	interval time.Duration
	stopOn   map[string]struct{}
	logger   *zap.Logger
}

// New creates a tracker. Status comparison is case-insensitive.
func New(source TransactionSource, interval time.Duration, stopStatuses []string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	stopOn := make(map[string]struct{}, len(stopStatuses))
	for _, status := range stopStatuses {
		stopOn[strings.ToLower(strings.TrimSpace(status))] = struct{}{}
	}
	return &Tracker{
		source:   source,
		interval: interval,
		stopOn:   stopOn,
		logger:   logger,
	}
}

// IsStopStatus reports whether status ends a Watch
func (t *Tracker) IsStopStatus(status string) bool {
	_, ok := t.stopOn[strings.ToLower(status)]
	return ok
}

// Watch fetches the transaction immediately and then every interval.
// onUpdate is called for the first result and whenever the status changes.
// It returns the last record once a stop status is reached, ctx.Err() when cancelled, or
// the error itself when retrying cannot help (see isPermanent). Other errors are logged and
// polling continues.
func (t *Tracker) Watch(ctx context.Context, id string, onUpdate func(*types.TransactionInfo)) (*types.TransactionInfo, error) {
	if t.interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", t.interval)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var last *types.TransactionInfo
	for {
		info, err := t.source.GetTransactionInfo(ctx, id)
		switch {
		case err == nil:
			if last == nil || last.Status != info.Status {
				t.logger.Debug("transaction status changed", zap.String("id", id), zap.String("status", info.Status))
				if onUpdate != nil {
					onUpdate(info)
				}
			}
			last = info
			if t.IsStopStatus(info.Status) {
				return info, nil
			}
		case ctx.Err() != nil:
			return last, ctx.Err()
		case isPermanent(err):
			return last, err
		default:
			t.logger.Warn("failed to fetch transaction status", zap.String("id", id), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

// isPermanent reports errors that repeat on every poll: the server rejecting the id,
// invalid arguments, and 4xx responses other than 408 and 429.
func isPermanent(err error) bool {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return true
	}
	if errors.Is(err, client.ErrInvalidRequest) {
		return true
	}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code >= 400 && code < 500 &&
			code != http.StatusRequestTimeout && code != http.StatusTooManyRequests
	}
	return false
}

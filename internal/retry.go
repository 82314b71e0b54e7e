// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type RetryPolicy struct {
	// Attempts is the total number of times the action may run. Values below 1 are treated as 1.
	Attempts int
	// Delay is the pause between a failed attempt and the next one.
	Delay time.Duration
	// Timeout bounds the blocking waits inside the action, not the retry loop.
	Timeout time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

var errNoReason = errors.New("no reason given")

// Retry runs action until it succeeds, returns a fatal result or runs out of
// attempts. onRetry runs between attempts only, never after the last one.
func Retry(ctx context.Context, name StageName, policy RetryPolicy, action Action, onRetry RetryHook) error {
	logger := Logger()
	attempts := policy.attempts()
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return &SystemTestError{
				ErrorCode: SystemTestErrorCodeInterrupted,
				ErrorMsg:  fmt.Sprintf("run interrupted before attempt %d", attempt),
				Stage:     name,
				Err:       ctx.Err(),
			}
		}
		logger.Infow("Running stage action", "stage", name, "attempt", attempt, "attempts", attempts)
		result := action(ctx, attempt)
		reason := result.Reason
		if reason == nil {
			reason = errNoReason
		}

		switch result.Kind {
		case ResultOk:
			return nil
		case ResultFatal:
			if IsInterrupted(reason) {
				return &SystemTestError{
					ErrorCode: SystemTestErrorCodeInterrupted,
					ErrorMsg:  reason.Error(),
					Stage:     name,
					Err:       reason,
				}
			}
			return &SystemTestError{
				ErrorCode: SystemTestErrorCodeFatal,
				ErrorMsg:  reason.Error(),
				Stage:     name,
				Err:       reason,
			}
		case ResultRetryable:
			logger.Warnw("Stage attempt failed", "stage", name, "attempt", attempt, "attempts", attempts, "reason", reason)
			if attempt >= attempts {
				return &SystemTestError{
					ErrorCode: SystemTestErrorCodeRetriesExhausted,
					ErrorMsg:  fmt.Sprintf("failed after %d attempt(s): %v", attempts, reason),
					Stage:     name,
					Err:       reason,
				}
			}
		default:
			return &SystemTestError{
				ErrorCode: SystemTestErrorCodeInternal,
				ErrorMsg:  fmt.Sprintf("unknown result kind %d", result.Kind),
				Stage:     name,
			}
		}

		if onRetry != nil {
			if err := onRetry(ctx, attempt); err != nil {
				return &SystemTestError{
					ErrorCode: SystemTestErrorCodeFatal,
					ErrorMsg:  fmt.Sprintf("failed to prepare retry after attempt %d: %v", attempt, err),
					Stage:     name,
					Err:       err,
				}
			}
		}

		if policy.Delay > 0 {
			select {
			case <-ctx.Done():
				return &SystemTestError{
					ErrorCode: SystemTestErrorCodeInterrupted,
					ErrorMsg:  "run interrupted while waiting to retry",
					Stage:     name,
					Err:       ctx.Err(),
				}
			case <-time.After(policy.Delay):
			}
		}
	}
}

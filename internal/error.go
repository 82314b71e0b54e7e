// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"errors"
	"fmt"
)

type SystemTestErrorCode int

const (
	SystemTestErrorCodeUnknown SystemTestErrorCode = iota
	SystemTestErrorCodeInternal
	SystemTestErrorCodeInvalidArgument
	SystemTestErrorCodeInvalidRuntimeState
	// A precondition or collaborator failure that must never be retried.
	SystemTestErrorCodeFatal
	// A retryable failure that used up every attempt of its stage.
	SystemTestErrorCodeRetriesExhausted
	// A pre or post hook failed.
	SystemTestErrorCodeHook
	SystemTestErrorCodeInterrupted
)

func (c SystemTestErrorCode) String() string {
	switch c {
	case SystemTestErrorCodeInternal:
		return "internal"
	case SystemTestErrorCodeInvalidArgument:
		return "invalid-argument"
	case SystemTestErrorCodeInvalidRuntimeState:
		return "invalid-runtime-state"
	case SystemTestErrorCodeFatal:
		return "fatal"
	case SystemTestErrorCodeRetriesExhausted:
		return "retries-exhausted"
	case SystemTestErrorCodeHook:
		return "hook"
	case SystemTestErrorCodeInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

type SystemTestError struct {
	ErrorCode SystemTestErrorCode
	ErrorMsg  string
	// Stage is empty when the error was raised outside of a stage.
	Stage StageName
	Err   error
}

func (e *SystemTestError) Error() string {
	msg := e.ErrorMsg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Stage != "" {
		return fmt.Sprintf("stage %s: %s", e.Stage, msg)
	}
	return msg
}

func (e *SystemTestError) Unwrap() error {
	return e.Err
}

func errorCode(err error) SystemTestErrorCode {
	var stErr *SystemTestError
	if errors.As(err, &stErr) {
		return stErr.ErrorCode
	}
	return SystemTestErrorCodeUnknown
}

func IsFatal(err error) bool {
	return errorCode(err) == SystemTestErrorCodeFatal
}

func IsRetriesExhausted(err error) bool {
	return errorCode(err) == SystemTestErrorCodeRetriesExhausted
}

func IsInterrupted(err error) bool {
	return errorCode(err) == SystemTestErrorCodeInterrupted
}

// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

type ResultKind int

const (
	ResultOk ResultKind = iota
	ResultRetryable
	ResultFatal
)

func (k ResultKind) String() string {
	switch k {
	case ResultOk:
		return "ok"
	case ResultRetryable:
		return "retryable"
	case ResultFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result is what a stage action hands back to the engine. The engine decides
// whether to retry, abort or move on based on Kind alone.
type Result struct {
	Kind   ResultKind
	Reason error
}

func Ok() Result {
	return Result{Kind: ResultOk}
}

func Retryable(reason error) Result {
	return Result{Kind: ResultRetryable, Reason: reason}
}

func Fatal(reason error) Result {
	return Result{Kind: ResultFatal, Reason: reason}
}

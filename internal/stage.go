// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"context"
	"time"
)

type StageName string

const (
	StageInstall   StageName = "install"
	StageWait      StageName = "wait"
	StageSleep     StageName = "sleep"
	StageTest      StageName = "test"
	StageUninstall StageName = "uninstall"
)

// CanonicalStages is the only order stages are ever run in.
var CanonicalStages = []StageName{
	StageInstall,
	StageWait,
	StageSleep,
	StageTest,
	StageUninstall,
}

func StageNames() []string {
	names := make([]string, 0, len(CanonicalStages))
	for _, name := range CanonicalStages {
		names = append(names, string(name))
	}
	return names
}

// Action does the work of a stage. attempt starts at 1.
type Action func(ctx context.Context, attempt int) Result

// Hook runs right before or right after an action.
type Hook func(ctx context.Context) error

// RetryHook puts the world back into a state where the action can be attempted
// again. failedAttempt is the attempt that just failed.
type RetryHook func(ctx context.Context, failedAttempt int) error

type Stage struct {
	Name StageName
	// Description is shown while the stage is running.
	Description string
	Action      Action
	PreHook     Hook
	PostHook    Hook
	OnRetry     RetryHook
	Policy      RetryPolicy
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// StageRecord is what the summary knows about one stage of the run.
type StageRecord struct {
	Name    StageName
	Start   time.Time
	End     time.Time
	Outcome Outcome
	Err     error
}

func (r StageRecord) Duration() time.Duration {
	if r.End.Before(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Select intersects the requested stages with CanonicalStages, keeping the
// canonical order no matter how the request was ordered.
func Select(requested []StageName) []StageName {
	wanted := make(map[StageName]bool, len(requested))
	for _, name := range requested {
		wanted[name] = true
	}
	selected := []StageName{}
	for _, name := range CanonicalStages {
		if wanted[name] {
			selected = append(selected, name)
		}
	}
	return selected
}

func IsKnownStage(name StageName) bool {
	for _, known := range CanonicalStages {
		if known == name {
			return true
		}
	}
	return false
}

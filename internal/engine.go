// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Engine runs a fixed, linear table of stages. Stages that were not selected are
// recorded as skipped without touching their hooks.
type Engine struct {
	stages   map[StageName]*Stage
	selected map[StageName]bool
	records  []StageRecord

	mutex     *sync.Mutex
	cancelled bool
	now       func() time.Time
}

func CreateEngine(stages []*Stage, requested []StageName) (*Engine, error) {
	table := make(map[StageName]*Stage, len(stages))
	for _, stage := range stages {
		if stage == nil || stage.Action == nil {
			return nil, &SystemTestError{
				ErrorCode: SystemTestErrorCodeInvalidArgument,
				ErrorMsg:  "every stage needs an action",
			}
		}
		if !IsKnownStage(stage.Name) {
			return nil, &SystemTestError{
				ErrorCode: SystemTestErrorCodeInvalidArgument,
				ErrorMsg:  fmt.Sprintf("unsupported stage: %s", stage.Name),
			}
		}
		if _, ok := table[stage.Name]; ok {
			return nil, &SystemTestError{
				ErrorCode: SystemTestErrorCodeInvalidArgument,
				ErrorMsg:  fmt.Sprintf("stage %s registered twice", stage.Name),
			}
		}
		table[stage.Name] = stage
	}

	selected := map[StageName]bool{}
	for _, name := range Select(requested) {
		selected[name] = true
	}

	return &Engine{
		stages:   table,
		selected: selected,
		mutex:    &sync.Mutex{},
		now:      time.Now,
	}, nil
}

// Selected returns the stages still due to run, in canonical order.
func (e *Engine) Selected() []StageName {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	names := []StageName{}
	for _, name := range CanonicalStages {
		if e.selected[name] {
			names = append(names, name)
		}
	}
	return names
}

func (e *Engine) IsSelected(name StageName) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.selected[name]
}

// Deselect removes stages from the remaining selection. Removing a stage that
// already ran has no effect on its record.
func (e *Engine) Deselect(names ...StageName) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, name := range names {
		delete(e.selected, name)
	}
}

// Run walks CanonicalStages in order and stops at the first stage error.
func (e *Engine) Run(ctx context.Context) error {
	logger := Logger()
	for _, name := range CanonicalStages {
		if _, ok := e.stages[name]; !ok {
			continue
		}
		if e.Cancelled() || ctx.Err() != nil {
			logger.Info("Run cancelled")
			return &SystemTestError{
				ErrorCode: SystemTestErrorCodeInterrupted,
				ErrorMsg:  fmt.Sprintf("run cancelled before stage %s", name),
				Stage:     name,
				Err:       ctx.Err(),
			}
		}
		if err := e.RunStage(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) RunStage(ctx context.Context, name StageName) error {
	stage, ok := e.stages[name]
	if !ok {
		return &SystemTestError{
			ErrorCode: SystemTestErrorCodeInvalidArgument,
			ErrorMsg:  fmt.Sprintf("unknown stage: %s", name),
		}
	}
	if !e.IsSelected(name) {
		Logger().Infof("Skipping stage: %s", name)
		now := e.now()
		e.record(StageRecord{Name: name, Start: now, End: now, Outcome: OutcomeSkipped})
		return nil
	}
	return e.execute(ctx, stage)
}

// ForceRunStage runs a stage whether or not it is selected. It is meant for the
// teardown path.
func (e *Engine) ForceRunStage(ctx context.Context, name StageName) error {
	stage, ok := e.stages[name]
	if !ok {
		return &SystemTestError{
			ErrorCode: SystemTestErrorCodeInvalidArgument,
			ErrorMsg:  fmt.Sprintf("unknown stage: %s", name),
		}
	}
	return e.execute(ctx, stage)
}

func (e *Engine) execute(ctx context.Context, stage *Stage) error {
	logger := Logger()
	start := e.now()
	logger.Infof("Running stage: %s", stage.Name)
	if stage.Description != "" {
		logger.Info(stage.Description)
	}

	fail := func(err error) error {
		e.record(StageRecord{Name: stage.Name, Start: start, End: e.now(), Outcome: OutcomeFailed, Err: err})
		return err
	}

	if stage.PreHook != nil {
		if err := stage.PreHook(ctx); err != nil {
			return fail(hookError(stage.Name, "pre", err))
		}
	}

	// Failed actions skip the post hook; the error is left to the caller.
	if err := Retry(ctx, stage.Name, stage.Policy, stage.Action, stage.OnRetry); err != nil {
		return fail(err)
	}

	if stage.PostHook != nil {
		if err := stage.PostHook(ctx); err != nil {
			return fail(hookError(stage.Name, "post", err))
		}
	}

	e.record(StageRecord{Name: stage.Name, Start: start, End: e.now(), Outcome: OutcomeSucceeded})
	return nil
}

func hookError(name StageName, kind string, err error) error {
	var stErr *SystemTestError
	if errors.As(err, &stErr) {
		if stErr.Stage != "" {
			return err
		}
		staged := *stErr
		staged.Stage = name
		return &staged
	}
	return &SystemTestError{
		ErrorCode: SystemTestErrorCodeHook,
		ErrorMsg:  fmt.Sprintf("%s-stage hook failed: %v", kind, err),
		Stage:     name,
		Err:       err,
	}
}

func (e *Engine) record(r StageRecord) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.records = append(e.records, r)
}

// Records returns a copy of the stage records in the order they finished.
func (e *Engine) Records() []StageRecord {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	records := make([]StageRecord, len(e.records))
	copy(records, e.records)
	return records
}

func (e *Engine) Cancel() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.cancelled = true
}

func (e *Engine) Cancelled() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.cancelled
}

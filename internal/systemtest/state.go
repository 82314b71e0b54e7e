// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"fmt"
	"sync"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

type Readiness int

const (
	ReadinessUnknown Readiness = iota
	ReadinessReady
	ReadinessNotReady
)

func (r Readiness) String() string {
	switch r {
	case ReadinessReady:
		return "ready"
	case ReadinessNotReady:
		return "not-ready"
	default:
		return "unknown"
	}
}

type Verdict int

const (
	// VerdictPending counts as a failure when the run ends.
	VerdictPending Verdict = iota
	VerdictPassed
	VerdictFailed
)

func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "passed"
	case VerdictFailed:
		return "failed"
	default:
		return "pending"
	}
}

// RunState is everything the stages of one run share. It is safe for use
// by the interrupt handler while the stages are running.
type RunState struct {
	mutex sync.Mutex

	instance    string
	tag         string
	readiness   Readiness
	testAttempt int
	testSuccess bool
	verdict     Verdict
}

// BindInstance sets the instance under test. Once bound, the instance can
// only be bound again to the same name.
func (s *RunState) BindInstance(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if name == "" {
		return &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
			ErrorMsg:  "instance name must not be empty",
		}
	}
	if s.instance != "" && s.instance != name {
		return &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeInvalidRuntimeState,
			ErrorMsg:  fmt.Sprintf("instance already bound to %s, cannot rebind to %s", s.instance, name),
		}
	}
	s.instance = name
	return nil
}

func (s *RunState) Instance() (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.instance, s.instance != ""
}

func (s *RunState) SetTag(tag string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tag = tag
}

func (s *RunState) Tag() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.tag
}

func (s *RunState) SetReady(ready bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if ready {
		s.readiness = ReadinessReady
	} else {
		s.readiness = ReadinessNotReady
	}
}

func (s *RunState) Readiness() Readiness {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.readiness
}

// NextTestAttempt increments the attempt counter and returns the new value.
func (s *RunState) NextTestAttempt() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.testAttempt++
	return s.testAttempt
}

func (s *RunState) TestAttempt() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.testAttempt
}

func (s *RunState) SetTestSuccess(success bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.testSuccess = success
}

func (s *RunState) TestSuccess() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.testSuccess
}

// MarkFailed latches the verdict to failed.
func (s *RunState) MarkFailed() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.verdict = VerdictFailed
}

// Settle records the verdict of the test stage: passed only if the instance
// was ready and the test succeeded, and only if nothing failed the run before.
func (s *RunState) Settle() Verdict {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.verdict == VerdictFailed {
		return s.verdict
	}
	if s.readiness == ReadinessReady && s.testSuccess {
		s.verdict = VerdictPassed
	} else {
		s.verdict = VerdictFailed
	}
	return s.verdict
}

func (s *RunState) Verdict() Verdict {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.verdict
}

func (s *RunState) Passed() bool {
	return s.Verdict() == VerdictPassed
}

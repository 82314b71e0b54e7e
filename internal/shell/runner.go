// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

const DefaultTimeout = 3600 // seconds

// Runner executes external commands through bash and keeps a log of
// everything it executed, including commands that were only echoed in dry-run
// mode.
type Runner interface {
	Run(ctx context.Context, input RunnerInput) (*RunnerOutput, error)
	// Note records a step that was not a command, such as a wait.
	Note(comment string)
	Commands() []string
	DryRun() bool
}

type RunnerInput struct {
	Command   string
	Timeout   int
	SkipError bool
}

type RunnerOutput struct {
	Stdout   strings.Builder
	Stderr   strings.Builder
	ExitCode int
	Error    error
}

type runnerImpl struct {
	dryRun bool
	// echo receives a copy of the command output as it runs.
	echo io.Writer

	mutex    sync.Mutex
	commands []string
}

func CreateRunner(dryRun bool, echo io.Writer) Runner {
	if echo == nil {
		echo = io.Discard
	}
	return &runnerImpl{dryRun: dryRun, echo: echo}
}

func (r *runnerImpl) DryRun() bool {
	return r.dryRun
}

func (r *runnerImpl) Note(comment string) {
	r.record("# " + comment)
}

func (r *runnerImpl) record(command string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.commands = append(r.commands, command)
}

func (r *runnerImpl) Commands() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	commands := make([]string, len(r.commands))
	copy(commands, r.commands)
	return commands
}

func (r *runnerImpl) Run(ctx context.Context, input RunnerInput) (*RunnerOutput, error) {
	logger := internal.Logger()
	r.record(input.Command)
	if r.dryRun {
		logger.Infof("[DRY RUN] Would have executed: %s", input.Command)
		return &RunnerOutput{}, nil
	}
	logger.Infof("Executing: %s", input.Command)
	if input.Timeout <= 0 {
		input.Timeout = DefaultTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(input.Timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, "bash", "-c", input.Command)

	output := &RunnerOutput{}
	cmd.Stdout = io.MultiWriter(&output.Stdout, r.echo)
	cmd.Stderr = io.MultiWriter(&output.Stderr, r.echo)
	err := cmd.Run()
	output.Error = err

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		output.ExitCode = exitErr.ExitCode()
	default:
		output.ExitCode = -1
	}
	logger.Debugw("Command finished", "command", input.Command, "exitCode", output.ExitCode)

	if err != nil && !input.SkipError {
		return output, fmt.Errorf("failed to execute command %q: %w", input.Command, err)
	}
	return output, nil
}

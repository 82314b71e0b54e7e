// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/kube"
	"github.com/SNL-GMS/GMS-PI23/internal/reports"
	"github.com/SNL-GMS/GMS-PI23/internal/shell"
)

func (l *Lifecycle) requireInstance(context.Context) error {
	if _, ok := l.state.Instance(); !ok {
		return errNoInstance()
	}
	return nil
}

func interrupted(ctx context.Context) internal.Result {
	return internal.Fatal(&internal.SystemTestError{
		ErrorCode: internal.SystemTestErrorCodeInterrupted,
		ErrorMsg:  "run interrupted",
		Err:       ctx.Err(),
	})
}

func (l *Lifecycle) install(ctx context.Context, _ int) internal.Result {
	logger := internal.Logger()
	instance, ok := l.state.Instance()
	if !ok {
		instance = UniqueInstanceName()
		if err := l.state.BindInstance(instance); err != nil {
			return internal.Fatal(err)
		}
		logger.Infof("An instance named `%s` will be created for testing purposes.", instance)
	}

	commands, err := InstallCommands(l.cfg.Type, l.state.Tag(), instance, l.cfg.Reporting)
	if err != nil {
		return internal.Fatal(err)
	}
	for _, command := range commands {
		output, err := l.deps.Runner.Run(ctx, shell.RunnerInput{Command: command})
		if err != nil {
			if ctx.Err() != nil {
				return interrupted(ctx)
			}
			return internal.Fatal(fmt.Errorf("instance failed to install, error code %d: %w", output.ExitCode, err))
		}
	}
	l.saveCredentials(instance)
	return internal.Ok()
}

func (l *Lifecycle) waitForPods(ctx context.Context, attempt int) internal.Result {
	logger := internal.Logger()
	if l.deps.Runner.DryRun() {
		logger.Info("[DRY RUN] Skipping this step.")
		l.state.SetReady(true)
		return internal.Ok()
	}
	orch, err := l.orchestrator()
	if err != nil {
		return internal.Fatal(err)
	}

	l.deps.Runner.Note("Wait for all pods to be ready.")
	policy := l.cfg.Policy(internal.StageWait)
	err = orch.WaitForAllPodsReady(ctx, policy.Timeout, policy.Delay, l.showWaitingPods)
	if err == nil {
		l.showPodTable(ctx, orch)
		logger.Info("ALL PODS READY!")
		l.state.SetReady(true)
		return internal.Ok()
	}
	if ctx.Err() != nil {
		return interrupted(ctx)
	}
	if errors.Is(err, kube.ErrPodsNotReady) {
		logger.Error("NOT ALL PODS READY!")
	} else {
		logger.Error(err)
	}
	if attempt < policy.Attempts {
		return internal.Retryable(err)
	}
	// Not ready is not fatal: uninstall still has to run.
	l.state.SetReady(false)
	return internal.Ok()
}

func (l *Lifecycle) afterWait(context.Context) error {
	if l.state.Readiness() != ReadinessReady {
		l.engine.Deselect(internal.StageSleep, internal.StageTest)
		l.state.MarkFailed()
	}
	return nil
}

func (l *Lifecycle) sleepAfterReady(ctx context.Context, _ int) internal.Result {
	logger := internal.Logger()
	if l.deps.Runner.DryRun() {
		logger.Info("[DRY RUN] Skipping this step.")
		return internal.Ok()
	}
	duration := l.cfg.SleepDuration()
	l.deps.Runner.Note(fmt.Sprintf("sleep %d", l.cfg.Sleep))
	logger.Infof("Sleeping for %s", duration)
	if err := l.sleep(ctx, duration); err != nil {
		return interrupted(ctx)
	}
	return internal.Ok()
}

func (l *Lifecycle) beforeTest(ctx context.Context) error {
	if err := l.requireInstance(ctx); err != nil {
		return err
	}
	if l.state.Tag() != "" {
		return nil
	}
	orch, err := l.orchestrator()
	if err != nil {
		return err
	}
	labels, err := orch.GetConfigMapLabels(ctx, tagConfigMap)
	if err != nil {
		return err
	}
	tag := labels[tagLabel]
	if tag == "" {
		return &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeFatal,
			ErrorMsg:  "Unable to determine the instance tag, which is needed for future stages.",
		}
	}
	l.state.SetTag(tag)
	return nil
}

func (l *Lifecycle) runTest(ctx context.Context, _ int) internal.Result {
	logger := internal.Logger()
	test := l.cfg.Test
	instance, _ := l.state.Instance()
	attempt := l.state.NextTestAttempt()

	command := ApplyTestCommand(l.state.Tag(), test, SetArgs(l.cfg.Env, test, l.cfg.Parallel), instance)
	if _, err := l.deps.Runner.Run(ctx, shell.RunnerInput{Command: command}); err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx)
		}
		return internal.Fatal(fmt.Errorf("failed to apply '%s': %w", test, err))
	}
	if l.deps.Runner.DryRun() {
		l.state.SetTestSuccess(true)
		return internal.Ok()
	}

	orch, err := l.orchestrator()
	if err != nil {
		return internal.Fatal(err)
	}
	failed, err := orch.JobFailedToStart(ctx, test)
	if err != nil {
		return internal.Fatal(err)
	}
	if failed {
		return internal.Fatal(fmt.Errorf("'%s' failed to start; aborting", test))
	}

	if err := orch.WaitForJob(ctx, test, l.cfg.Policy(internal.StageTest).Timeout); err != nil {
		if ctx.Err() != nil {
			return interrupted(ctx)
		}
		if errors.Is(err, kube.ErrJobTimeout) {
			l.state.SetTestSuccess(false)
			return internal.Retryable(err)
		}
		return internal.Fatal(err)
	}

	logger.Infof("Collecting results from '%s'", test)
	store, err := l.reportStore(ctx)
	if err != nil {
		return internal.Fatal(err)
	}
	resultsDir, err := l.bundle.AttemptDir(test, attempt)
	if err != nil {
		return internal.Fatal(err)
	}
	retriever := &reports.Retriever{Store: store, Bucket: l.cfg.Reporting.Bucket}
	success, err := retriever.Retrieve(ctx, test, resultsDir, l.cfg.Parallel)
	if err != nil {
		return internal.Fatal(err)
	}
	l.state.SetTestSuccess(success)
	if !success {
		logger.Errorf("%s FAILED", test)
		return internal.Retryable(fmt.Errorf("%s FAILED", test))
	}
	logger.Infof("%s PASSED", test)
	return internal.Ok()
}

// prepareTestRetry removes everything the failed attempt left behind so the
// test can be applied again.
func (l *Lifecycle) prepareTestRetry(ctx context.Context, failedAttempt int) error {
	logger := internal.Logger()
	test := l.cfg.Test
	instance, _ := l.state.Instance()

	if !l.deps.Runner.DryRun() {
		if orch, err := l.orchestrator(); err == nil {
			if err := orch.SaveJobLogs(ctx, test, l.bundle.LogDir); err != nil {
				logger.Warnf("Failed to save the logs of attempt %d: %v", failedAttempt, err)
			}
		}
	}

	if _, err := l.deps.Runner.Run(ctx, shell.RunnerInput{
		Command: DeleteTestCommand(l.state.Tag(), test, instance),
	}); err != nil {
		return err
	}

	if !l.deps.Runner.DryRun() {
		store, err := l.reportStore(ctx)
		if err != nil {
			return err
		}
		retriever := &reports.Retriever{Store: store, Bucket: l.cfg.Reporting.Bucket}
		if err := retriever.Purge(ctx, test); err != nil {
			return err
		}
	}
	logger.Warn("Retrying the failed test...")
	return nil
}

func (l *Lifecycle) afterTest(context.Context) error {
	verdict := l.state.Settle()
	internal.Logger().Infof("Test verdict: %s", verdict)
	return nil
}

func (l *Lifecycle) beforeUninstall(ctx context.Context) error {
	if err := l.requireInstance(ctx); err != nil {
		return err
	}
	l.saveLogs(ctx)
	return nil
}

// uninstall is only marked done once the command succeeded, so an attempt
// killed by an interrupt is repeated by the teardown.
func (l *Lifecycle) uninstall(ctx context.Context, _ int) internal.Result {
	l.uninstallMutex.Lock()
	defer l.uninstallMutex.Unlock()
	if l.uninstalled {
		return internal.Ok()
	}
	if !l.state.Passed() && !l.deps.Runner.DryRun() {
		if orch, err := l.orchestrator(); err == nil {
			l.showPodTable(ctx, orch)
		}
	}
	instance, _ := l.state.Instance()
	if _, err := l.deps.Runner.Run(ctx, shell.RunnerInput{Command: UninstallCommand(instance)}); err != nil {
		return internal.Fatal(err)
	}
	l.uninstalled = true
	l.forgetCredentials(instance)
	return internal.Ok()
}

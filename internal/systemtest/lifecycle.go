// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/config"
	"github.com/SNL-GMS/GMS-PI23/internal/reports"
	"github.com/SNL-GMS/GMS-PI23/internal/secrets"
	"github.com/SNL-GMS/GMS-PI23/internal/shell"
)

const (
	tagConfigMap = "gms"
	tagLabel     = "gms/image-tag"
)

// CredentialStore keeps the reporting credentials of installed instances.
type CredentialStore interface {
	SaveSecret(instance string, creds secrets.Credentials) error
	GetSecret(instance string) (secrets.Credentials, bool, error)
	RemoveSecret(instance string) error
}

var _ CredentialStore = (*secrets.FileSaver)(nil)

type Dependencies struct {
	Runner          shell.Runner
	NewOrchestrator OrchestratorFactory
	NewStore        StoreFactory
	// Credentials is optional; without it every run uses the configured keys.
	Credentials CredentialStore
	// Out receives the live displays (pod table, log capture progress).
	Out io.Writer
	// CI shortens the live displays to a single line.
	CI bool
}

// Lifecycle owns one system test run: the stage table, the shared RunState
// and the collaborators the stages call into.
type Lifecycle struct {
	cfg    *config.SystemTestConfig
	state  *RunState
	bundle *reports.Bundle
	deps   Dependencies
	engine *internal.Engine

	orchMutex sync.Mutex
	orch      Orchestrator

	storeOnce sync.Once
	store     reports.Store
	storeErr  error

	logsMutex sync.Mutex
	logsSaved bool

	uninstallMutex sync.Mutex
	uninstalled    bool

	// pollInterval paces the live display while logs are being captured.
	pollInterval time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewLifecycle(cfg *config.SystemTestConfig, bundle *reports.Bundle, deps Dependencies) (*Lifecycle, error) {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.NewStore == nil {
		deps.NewStore = MinioStoreFactory
	}
	if deps.Runner == nil || deps.NewOrchestrator == nil {
		return nil, &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
			ErrorMsg:  "a command runner and an orchestrator factory are required",
		}
	}

	if cfg.Instance != "" && !cfg.HasStage(internal.StageInstall) && deps.Credentials != nil {
		reporting, err := savedReporting(deps.Credentials, cfg.Instance, cfg.Reporting)
		if err != nil {
			return nil, err
		}
		c := *cfg
		c.Reporting = reporting
		cfg = &c
	}

	l := &Lifecycle{
		cfg:          cfg,
		state:        &RunState{},
		bundle:       bundle,
		deps:         deps,
		pollInterval: time.Second,
		sleep:        sleepContext,
	}
	if cfg.Instance != "" {
		if err := l.state.BindInstance(cfg.Instance); err != nil {
			return nil, err
		}
	}
	if cfg.Tag != "" {
		l.state.SetTag(cfg.Tag)
	}

	engine, err := internal.CreateEngine(l.stages(), cfg.StageNames())
	if err != nil {
		return nil, err
	}
	l.engine = engine
	return l, nil
}

func (l *Lifecycle) stages() []*internal.Stage {
	return []*internal.Stage{
		{
			Name:        internal.StageInstall,
			Description: "Installing an instance for testing purposes...",
			Action:      l.install,
			PostHook:    l.requireInstance,
			Policy:      l.cfg.Policy(internal.StageInstall),
		},
		{
			Name:        internal.StageWait,
			Description: "Checking to see if all pods are running...",
			PreHook:     l.requireInstance,
			Action:      l.waitForPods,
			PostHook:    l.afterWait,
			Policy:      l.cfg.Policy(internal.StageWait),
		},
		{
			Name:        internal.StageSleep,
			Description: "Sleeping to allow the application to be ready...",
			Action:      l.sleepAfterReady,
			Policy:      l.cfg.Policy(internal.StageSleep),
		},
		{
			Name:        internal.StageTest,
			Description: "Running the specified test...",
			PreHook:     l.beforeTest,
			Action:      l.runTest,
			OnRetry:     l.prepareTestRetry,
			PostHook:    l.afterTest,
			Policy:      l.cfg.Policy(internal.StageTest),
		},
		{
			Name:        internal.StageUninstall,
			Description: "Uninstalling the instance now that testing is complete...",
			PreHook:     l.beforeUninstall,
			Action:      l.uninstall,
			Policy:      l.cfg.Policy(internal.StageUninstall),
		},
	}
}

func (l *Lifecycle) State() *RunState {
	return l.state
}

func (l *Lifecycle) Engine() *internal.Engine {
	return l.engine
}

func (l *Lifecycle) Bundle() *reports.Bundle {
	return l.bundle
}

func (l *Lifecycle) Commands() []string {
	return l.deps.Runner.Commands()
}

// Run runs the selected stages in order.
func (l *Lifecycle) Run(ctx context.Context) error {
	return l.engine.Run(ctx)
}

func (l *Lifecycle) MarkFailed() {
	l.state.MarkFailed()
}

func (l *Lifecycle) Passed() bool {
	return l.state.Passed()
}

// Cancel stops the engine before its next stage.
func (l *Lifecycle) Cancel() {
	l.engine.Cancel()
}

// Teardown runs the uninstall stage outside of the normal stage order. It does
// nothing when no instance was ever bound or when uninstall was not requested,
// and the uninstall command itself succeeds at most once per run.
func (l *Lifecycle) Teardown(ctx context.Context) error {
	logger := internal.Logger()
	instance, ok := l.state.Instance()
	if !ok {
		logger.Info("No instance was bound; nothing to tear down.")
		return nil
	}
	if !l.engine.IsSelected(internal.StageUninstall) {
		logger.Warnf("The uninstall stage was not requested; leaving instance '%s' in place.", instance)
		return nil
	}
	return l.engine.ForceRunStage(ctx, internal.StageUninstall)
}

// orchestrator returns the Orchestrator for the bound instance.
func (l *Lifecycle) orchestrator() (Orchestrator, error) {
	l.orchMutex.Lock()
	defer l.orchMutex.Unlock()
	if l.orch != nil {
		return l.orch, nil
	}
	instance, ok := l.state.Instance()
	if !ok {
		return nil, errNoInstance()
	}
	orch, err := l.deps.NewOrchestrator(instance)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the cluster: %w", err)
	}
	l.orch = orch
	return orch, nil
}

// savedReporting swaps in the keys the instance was installed with, if they
// were saved.
func savedReporting(store CredentialStore, instance string, reporting config.Reporting) (config.Reporting, error) {
	logger := internal.Logger()
	creds, ok, err := store.GetSecret(instance)
	if err != nil {
		return reporting, fmt.Errorf("failed to read the reporting credentials of %s: %w", instance, err)
	}
	if !ok {
		logger.Warnf("No reporting credentials were saved for instance '%s'; using the configured ones.", instance)
		return reporting, nil
	}
	logger.Infof("Using the reporting credentials saved for instance '%s'.", instance)
	reporting.AccessKey = creds.AccessKey
	reporting.SecretKey = creds.SecretKey
	return reporting, nil
}

func (l *Lifecycle) saveCredentials(instance string) {
	if l.deps.Credentials == nil || l.deps.Runner.DryRun() {
		return
	}
	err := l.deps.Credentials.SaveSecret(instance, secrets.Credentials{
		AccessKey: l.cfg.Reporting.AccessKey,
		SecretKey: l.cfg.Reporting.SecretKey,
	})
	if err != nil {
		internal.Logger().Warnf("Failed to save the reporting credentials of %s: %v", instance, err)
	}
}

func (l *Lifecycle) forgetCredentials(instance string) {
	if l.deps.Credentials == nil || l.deps.Runner.DryRun() {
		return
	}
	if err := l.deps.Credentials.RemoveSecret(instance); err != nil {
		internal.Logger().Warnf("Failed to remove the reporting credentials of %s: %v", instance, err)
	}
}

func errNoInstance() error {
	return &internal.SystemTestError{
		ErrorCode: internal.SystemTestErrorCodeFatal,
		ErrorMsg:  "The instance name is necessary for future stages. Specify `--instance` on the command line.",
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

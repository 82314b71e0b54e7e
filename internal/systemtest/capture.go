// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

// saveLogs captures the logs of every container of the instance, at most
// once per run. A capture that failed or was cancelled is repeated by the
// next caller. The capture runs in the background while this goroutine
// shows its progress, and the saved flag is only read after the capture
// has been joined.
func (l *Lifecycle) saveLogs(ctx context.Context) {
	logger := internal.Logger()
	l.logsMutex.Lock()
	defer l.logsMutex.Unlock()
	if l.logsSaved || l.deps.Runner.DryRun() {
		return
	}
	orch, err := l.orchestrator()
	if err != nil {
		logger.Warnf("Not saving logs: %v", err)
		return
	}

	captured := false
	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		err := orch.SaveAllLogs(ctx, l.bundle.LogDir)
		captured = err == nil
		return err
	})

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()
	for waiting := true; waiting; {
		select {
		case <-done:
			waiting = false
		case <-ticker.C:
			l.showSavedLogs()
		}
	}

	if err := g.Wait(); err != nil {
		logger.Warnf("Some container logs could not be saved: %v", err)
	}
	l.logsSaved = captured
	l.showSavedLogs()
}

// LogsSaved reports whether the container logs were captured.
func (l *Lifecycle) LogsSaved() bool {
	l.logsMutex.Lock()
	defer l.logsMutex.Unlock()
	return l.logsSaved
}

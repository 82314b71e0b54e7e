// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

// Target is the run the guard protects.
type Target interface {
	Run(ctx context.Context) error
	MarkFailed()
	// Cancel stops the run before its next stage.
	Cancel()
	// Teardown releases the instance under test. It must be safe to call
	// more than once and from more than one goroutine.
	Teardown(ctx context.Context) error
	Passed() bool
}

// Guard runs a Target and makes sure the instance is torn down on every
// way out: a failed run, a panic, or SIGINT/SIGTERM. A second signal that
// arrives while the first teardown is in progress is ignored.
type Guard struct {
	target  Target
	signals chan os.Signal
	exit    func(code int)

	mutex  sync.Mutex
	cancel context.CancelFunc

	once        sync.Once
	interrupted chan struct{}
	done        chan struct{}
}

func CreateGuard(target Target) *Guard {
	return &Guard{
		target:      target,
		signals:     make(chan os.Signal, 1),
		exit:        os.Exit,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run runs the target and returns the process exit code: 0 only when the
// run finished and passed.
func (g *Guard) Run(ctx context.Context) int {
	logger := internal.Logger()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.mutex.Lock()
	g.cancel = cancel
	g.mutex.Unlock()

	signal.Notify(g.signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(g.signals)
	stop := make(chan struct{})
	defer close(stop)
	go g.watch(stop)

	err := g.runTarget(ctx)
	if g.interrupting() {
		<-g.done
		return 1
	}
	if err != nil {
		logger.Errorf("System test failed: %v", err)
		g.target.MarkFailed()
		if err := g.target.Teardown(context.Background()); err != nil {
			logger.Errorf("Failed to tear down: %v", err)
		}
		return 1
	}
	if !g.target.Passed() {
		return 1
	}
	return 0
}

func (g *Guard) watch(stop <-chan struct{}) {
	select {
	case s := <-g.signals:
		internal.Logger().Debugf("Caught signal %s", s)
		g.Interrupt()
	case <-stop:
	}
}

func (g *Guard) runTarget(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &internal.SystemTestError{
				ErrorCode: internal.SystemTestErrorCodeInternal,
				ErrorMsg:  fmt.Sprintf("unexpected panic: %v", r),
			}
		}
	}()
	return g.target.Run(ctx)
}

func (g *Guard) interrupting() bool {
	select {
	case <-g.interrupted:
		return true
	default:
		return false
	}
}

// Interrupt fails the run, stops it, tears the instance down and exits
// with status 1. Only the first call does anything.
func (g *Guard) Interrupt() {
	g.once.Do(func() {
		logger := internal.Logger()
		close(g.interrupted)
		logger.Warn("Caught a keyboard interrupt signal. Attempting to tear down...")
		g.target.MarkFailed()
		g.target.Cancel()
		g.mutex.Lock()
		if g.cancel != nil {
			g.cancel()
		}
		g.mutex.Unlock()

		if err := g.target.Teardown(context.Background()); err != nil {
			logger.Errorf("Failed to tear down after the interrupt: %v", err)
		}
		close(g.done)
		g.exit(1)
	})
}

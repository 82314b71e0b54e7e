// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

const (
	bundlePrefix     = "system-test-reports"
	bundleTimeFormat = "20060102T150405"
	ContainerLogsDir = "container-logs"
)

// Bundle is the report directory of one run. It holds the container logs
// and one directory per test attempt.
type Bundle struct {
	Dir    string
	LogDir string
}

// CreateBundle creates system-test-reports-<timestamp>-<suffix> under parent,
// along with its empty container-logs directory.
func CreateBundle(parent string, now time.Time) (*Bundle, error) {
	name := fmt.Sprintf("%s-%s-%s", bundlePrefix, now.Format(bundleTimeFormat), internal.UniqueSuffix(5))
	dir, err := filepath.Abs(filepath.Join(parent, name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report directory: %w", err)
	}
	if err := os.MkdirAll(parent, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", parent, err)
	}
	// Mkdir, not MkdirAll: a name collision is an error.
	if err := os.Mkdir(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	logDir := filepath.Join(dir, ContainerLogsDir)
	if err := os.Mkdir(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", logDir, err)
	}
	return &Bundle{Dir: dir, LogDir: logDir}, nil
}

// AttemptDir creates the directory for the results of one test attempt.
// Creating the same attempt twice is an error.
func (b *Bundle) AttemptDir(test string, attempt int) (string, error) {
	dir := filepath.Join(b.Dir, fmt.Sprintf("%s-%d", test, attempt))
	if err := os.Mkdir(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	return dir, nil
}

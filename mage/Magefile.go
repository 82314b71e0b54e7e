// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package mage

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

const (
	binaryName = "gms-system-test"
	mainPkg    = "./cmd/gms-system-test"
	buildDir   = "build"
)

// Namespace contains build targets.
type Build mg.Namespace

// Build the gms-system-test binary into build/.
func (b Build) Binary() error {
	return b.binary()
}

// Remove build artifacts.
func (b Build) Clean() error {
	return b.clean()
}

// Namespace contains test targets.
type Test mg.Namespace

// Test Go source files.
func (t Test) Go() error {
	return t.golang()
}

// Test Go source files with the race detector and write coverage to build/.
func (t Test) Race() error {
	return t.race()
}

// Run the reports specs with ginkgo.
func (t Test) Specs() error {
	return t.specs()
}

type Lint mg.Namespace

// Lint everything.
func (l Lint) All() error {
	if err := l.golang(); err != nil {
		return err
	}
	if err := l.mod(); err != nil {
		return err
	}
	return nil
}

// Lint golang files.
func (l Lint) Golang() error {
	return l.golang()
}

// Check that go.mod and go.sum are tidy.
func (l Lint) Mod() error {
	return l.mod()
}

type Version mg.Namespace

// Print the version the binary is stamped with.
func (Version) Print() error {
	version, err := getVersion()
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	fmt.Println(version)
	return nil
}

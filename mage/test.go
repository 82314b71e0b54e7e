// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package mage

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

func (Test) golang() error {
	return sh.RunV("go", "test", "./...")
}

func (Test) race() error {
	if err := os.MkdirAll(buildDir, os.ModePerm); err != nil {
		return err
	}
	return sh.RunV("go", "test", "-race", "-coverprofile", filepath.Join(buildDir, "coverage.out"), "./...")
}

func (Test) specs() error {
	return sh.RunV("ginkgo", "-v", "./internal/reports")
}

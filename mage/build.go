// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package mage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

func (Build) binary() error {
	version, err := getVersion()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(buildDir, os.ModePerm); err != nil {
		return err
	}
	ldflags := fmt.Sprintf("-s -w -X main.version=%s", version)
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "0"},
		"go", "build", "-trimpath", "-ldflags", ldflags, "-o", filepath.Join(buildDir, binaryName), mainPkg)
}

func (Build) clean() error {
	return sh.Rm(buildDir)
}

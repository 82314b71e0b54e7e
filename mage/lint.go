// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package mage

import (
	"fmt"

	"github.com/bitfield/script"
	"github.com/magefile/mage/sh"
)

func (Lint) golang() error {
	return sh.RunV("golangci-lint", "run", "-v", "--timeout", "5m0s")
}

func (Lint) mod() error {
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	changed, err := script.Exec("git status --porcelain go.mod go.sum").String()
	if err != nil {
		return err
	}
	if changed != "" {
		return fmt.Errorf("go.mod or go.sum is not tidy:\n%s", changed)
	}
	return nil
}

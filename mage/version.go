// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package mage

import (
	"os"
	"strings"

	"github.com/bitfield/script"
)

// getVersion reads the VERSION file, falling back to the current git commit.
func getVersion() (string, error) {
	v, err := os.ReadFile("VERSION")
	if err == nil {
		version := strings.TrimSpace(string(v))
		version = strings.ReplaceAll(version, "\n", "_")
		return strings.ReplaceAll(version, " ", ""), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	commit, err := script.Exec("git rev-parse --short HEAD").String()
	if err != nil {
		return "dev", nil
	}
	return strings.TrimSpace(commit), nil
}

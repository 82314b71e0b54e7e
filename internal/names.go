// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	"strings"

	"github.com/google/uuid"
)

// UniqueSuffix returns n random hex characters [0-9a-f], n at most 32.
func UniqueSuffix(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}
	return hex[:n]
}

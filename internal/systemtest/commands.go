// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"fmt"
	"strings"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/config"
)

const (
	instancePrefix = "gms-system-test"
	nodeEnv        = "development"
	globalScope    = "global"
)

// UniqueInstanceName returns gms-system-test-<10 random characters>.
func UniqueInstanceName() string {
	return fmt.Sprintf("%s-%s", instancePrefix, internal.UniqueSuffix(10))
}

// ReportingCommand installs the object store test pods upload their reports to.
func ReportingCommand(tag, instance string, reporting config.Reporting) string {
	return fmt.Sprintf("gmskube augment apply --tag %s --name %s --set minioReportBucket=%s "+
		"--set minioAccessKey=%s --set minioSecretKey=%s %s",
		tag, reporting.Augmentation, reporting.Bucket, reporting.AccessKey, reporting.SecretKey, instance)
}

// InstallCommands returns the install command for the instance type,
// always followed by the reporting augmentation.
func InstallCommands(instanceType, tag, instance string, reporting config.Reporting) ([]string, error) {
	var install string
	switch instanceType {
	case config.InstanceTypeIAN:
		install = fmt.Sprintf("GMS_DISABLE_KEYCLOAK_AUTH=true ian-sim-deploy --tag-auto %s %s %s",
			tag, instance, nodeEnv)
	case config.InstanceTypeSB:
		install = fmt.Sprintf("gmskube install --tag %s --type %s --augment oracle "+
			"--set interactive-analysis-ui.env.GMS_DISABLE_KEYCLOAK_AUTH=true %s",
			tag, instanceType, instance)
	case config.InstanceTypeSOH:
		install = fmt.Sprintf("gmskube install --tag %s --type %s "+
			"--set interactive-analysis-ui.env.NODE_ENV=%s "+
			"--set interactive-analysis-ui.env.GMS_DISABLE_KEYCLOAK_AUTH=true %s",
			tag, instanceType, nodeEnv, instance)
	default:
		return nil, &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
			ErrorMsg:  fmt.Sprintf("unsupported instance type %q", instanceType),
		}
	}
	return []string{install, ReportingCommand(tag, instance, reporting)}, nil
}

// SetArgs translates --env values into --set arguments for the test
// augmentation. NAME=VALUE applies to every test and TEST.NAME=VALUE only to
// TEST. Unscoped settings come first, each group keeps its order, and
// numIdenticalPods is appended when more than one pod is requested.
func SetArgs(env []string, test string, parallel int) []string {
	scoped := map[string][]string{}
	for _, item := range env {
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		scope := globalScope
		if s, n, found := strings.Cut(name, "."); found {
			scope, name = s, n
		}
		scoped[scope] = append(scoped[scope], fmt.Sprintf(`--set env.%s="%s"`, name, value))
	}
	args := append([]string{}, scoped[globalScope]...)
	if test != globalScope {
		args = append(args, scoped[test]...)
	}
	if parallel > 1 {
		args = append(args, fmt.Sprintf("--set numIdenticalPods=%d", parallel))
	}
	return args
}

func ApplyTestCommand(tag, test string, setArgs []string, instance string) string {
	parts := []string{"gmskube augment apply", "--tag", tag, "--name", test}
	parts = append(parts, setArgs...)
	parts = append(parts, instance)
	return strings.Join(parts, " ")
}

func DeleteTestCommand(tag, test, instance string) string {
	return fmt.Sprintf("gmskube augment delete --tag %s --name %s %s", tag, test, instance)
}

func UninstallCommand(instance string) string {
	return fmt.Sprintf("gmskube uninstall %s", instance)
}

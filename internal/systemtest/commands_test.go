// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/config"
)

type CommandsTest struct {
	suite.Suite
	reporting config.Reporting
}

func TestCommands(t *testing.T) {
	suite.Run(t, new(CommandsTest))
}

func (s *CommandsTest) SetupTest() {
	s.reporting = config.Reporting{
		Augmentation: "minio-test-reports",
		Bucket:       "reports",
		AccessKey:    "access",
		SecretKey:    "secret",
	}
}

func (s *CommandsTest) TestInstallCommands() {
	reportingCommand := "gmskube augment apply --tag sha1 --name minio-test-reports --set minioReportBucket=reports " +
		"--set minioAccessKey=access --set minioSecretKey=secret instance"
	tests := []struct {
		instanceType string
		install      string
	}{
		{
			instanceType: config.InstanceTypeSOH,
			install: "gmskube install --tag sha1 --type soh " +
				"--set interactive-analysis-ui.env.NODE_ENV=development " +
				"--set interactive-analysis-ui.env.GMS_DISABLE_KEYCLOAK_AUTH=true instance",
		},
		{
			instanceType: config.InstanceTypeSB,
			install: "gmskube install --tag sha1 --type sb --augment oracle " +
				"--set interactive-analysis-ui.env.GMS_DISABLE_KEYCLOAK_AUTH=true instance",
		},
		{
			instanceType: config.InstanceTypeIAN,
			install:      "GMS_DISABLE_KEYCLOAK_AUTH=true ian-sim-deploy --tag-auto sha1 instance development",
		},
	}
	for _, tt := range tests {
		s.Run(tt.instanceType, func() {
			commands, err := InstallCommands(tt.instanceType, "sha1", "instance", s.reporting)
			s.NoError(err)
			s.Equal([]string{tt.install, reportingCommand}, commands)
		})
	}
}

func (s *CommandsTest) TestInstallCommandsUnknownType() {
	_, err := InstallCommands("foo", "sha1", "instance", s.reporting)
	s.Error(err)
	var stErr *internal.SystemTestError
	s.ErrorAs(err, &stErr)
	s.Equal(internal.SystemTestErrorCodeInvalidArgument, stErr.ErrorCode)
}

func (s *CommandsTest) TestSetArgs() {
	tests := []struct {
		name     string
		env      []string
		test     string
		parallel int
		expected []string
	}{
		{
			name:     "none",
			test:     "test",
			parallel: 1,
			expected: []string{},
		},
		{
			name:     "global",
			env:      []string{"foo=bar"},
			test:     "test",
			parallel: 1,
			expected: []string{`--set env.foo="bar"`},
		},
		{
			name:     "scoped to the running test",
			env:      []string{"test.foo=bar"},
			test:     "test",
			parallel: 1,
			expected: []string{`--set env.foo="bar"`},
		},
		{
			name:     "scoped to another test",
			env:      []string{"other.foo=bar"},
			test:     "test",
			parallel: 1,
			expected: []string{},
		},
		{
			name:     "global first",
			env:      []string{"test.a=1", "b=2", "other.c=3", "d=4", "test.e=5"},
			test:     "test",
			parallel: 1,
			expected: []string{
				`--set env.b="2"`, `--set env.d="4"`, `--set env.a="1"`, `--set env.e="5"`,
			},
		},
		{
			name:     "value keeps its equals signs and dots",
			env:      []string{"url=http://host.name/?a=b"},
			test:     "test",
			parallel: 1,
			expected: []string{`--set env.url="http://host.name/?a=b"`},
		},
		{
			name:     "parallel",
			env:      []string{"foo=bar"},
			test:     "test",
			parallel: 3,
			expected: []string{`--set env.foo="bar"`, "--set numIdenticalPods=3"},
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.expected, SetArgs(tt.env, tt.test, tt.parallel))
		})
	}
}

func (s *CommandsTest) TestTestCommands() {
	s.Equal(`gmskube augment apply --tag sha1 --name test --set env.foo="bar" instance`,
		ApplyTestCommand("sha1", "test", []string{`--set env.foo="bar"`}, "instance"))
	s.Equal("gmskube augment apply --tag sha1 --name test instance",
		ApplyTestCommand("sha1", "test", nil, "instance"))
	s.Equal("gmskube augment delete --tag sha1 --name test instance", DeleteTestCommand("sha1", "test", "instance"))
	s.Equal("gmskube uninstall instance", UninstallCommand("instance"))
}

func (s *CommandsTest) TestUniqueInstanceName() {
	seen := map[string]bool{}
	for range 5 {
		name := UniqueInstanceName()
		s.True(strings.HasPrefix(name, "gms-system-test-"))
		s.Len(name, len("gms-system-test-")+10)
		s.False(seen[name])
		seen[name] = true
	}
}

// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/google/uuid"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

const (
	InstanceTypeIAN = "ian"
	InstanceTypeSB  = "sb"
	InstanceTypeSOH = "soh"
)

var InstanceTypes = []string{InstanceTypeIAN, InstanceTypeSB, InstanceTypeSOH}

type StageRetry struct {
	Attempts int `yaml:"attempts" validate:"min=1"`
	// Delay between attempts in seconds. For the wait stage this is the poll interval.
	Delay int `yaml:"delay" validate:"min=0"`
	// Timeout in seconds for the blocking waits of the stage.
	Timeout int `yaml:"timeout" validate:"min=0"`
}

func (r StageRetry) Policy() internal.RetryPolicy {
	return internal.RetryPolicy{
		Attempts: r.Attempts,
		Delay:    time.Duration(r.Delay) * time.Second,
		Timeout:  time.Duration(r.Timeout) * time.Second,
	}
}

type Retry struct {
	Install   StageRetry `yaml:"install"`
	Wait      StageRetry `yaml:"wait"`
	Sleep     StageRetry `yaml:"sleep"`
	Test      StageRetry `yaml:"test"`
	Uninstall StageRetry `yaml:"uninstall"`
}

// Reporting describes the object-storage augmentation test pods upload their
// results to.
type Reporting struct {
	Augmentation string `yaml:"augmentation" validate:"required"`
	Bucket       string `yaml:"bucket" validate:"required"`
	AccessKey    string `yaml:"accessKey" validate:"required"`
	SecretKey    string `yaml:"secretKey" validate:"required"`
	// Namespace and name of the config map holding the ingress ports.
	PortsNamespace string `yaml:"portsNamespace" validate:"required"`
	PortsConfigMap string `yaml:"portsConfigMap" validate:"required"`
	Secure         bool   `yaml:"secure"`
}

type SystemTestConfig struct {
	Tag      string `yaml:"tag"`
	Type     string `yaml:"type" validate:"omitempty,oneof=ian sb soh"`
	Instance string `yaml:"instance"`
	// Sleep is the warm-up time in seconds once all pods are ready.
	Sleep    int      `yaml:"sleep" validate:"min=0"`
	Test     string   `yaml:"test"`
	Env      []string `yaml:"env" validate:"dive,envpair"`
	Parallel int      `yaml:"parallel" validate:"min=1,max=10"`
	Stages   []string `yaml:"stages" validate:"min=1,dive,oneof=install wait sleep test uninstall"`
	DryRun   bool     `yaml:"dryRun"`

	LogLevel string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	// ReportsParent is where the uniquely named report directory is created.
	ReportsParent string `yaml:"reportsParent"`
	KubeConfig    string `yaml:"kubeConfig"`
	// CredentialsDir keeps the reporting credentials of installed instances.
	// Empty means the user config directory.
	CredentialsDir string `yaml:"credentialsDir"`

	Reporting Reporting `yaml:"reporting"`
	Retry     Retry     `yaml:"retry"`
}

// Default returns a configuration with every default set. The reporting
// credentials are fresh for every call.
func Default() SystemTestConfig {
	return SystemTestConfig{
		Parallel:      1,
		Stages:        internal.StageNames(),
		LogLevel:      "info",
		ReportsParent: ".",
		Reporting: Reporting{
			Augmentation:   "minio-test-reports",
			Bucket:         "reports",
			AccessKey:      uuid.NewString(),
			SecretKey:      uuid.NewString(),
			PortsNamespace: "gms",
			PortsConfigMap: "ingress-ports-config",
		},
		Retry: Retry{
			Install:   StageRetry{Attempts: 1},
			Wait:      StageRetry{Attempts: 1, Delay: 5, Timeout: 60},
			Sleep:     StageRetry{Attempts: 1},
			Test:      StageRetry{Attempts: 5, Delay: 0, Timeout: 1200},
			Uninstall: StageRetry{Attempts: 1},
		},
	}
}

// StageNames returns the configured stages as engine stage names.
func (c *SystemTestConfig) StageNames() []internal.StageName {
	names := make([]internal.StageName, 0, len(c.Stages))
	for _, s := range c.Stages {
		names = append(names, internal.StageName(s))
	}
	return names
}

func (c *SystemTestConfig) HasStage(name internal.StageName) bool {
	for _, s := range c.Stages {
		if internal.StageName(s) == name {
			return true
		}
	}
	return false
}

func (c *SystemTestConfig) Policy(name internal.StageName) internal.RetryPolicy {
	switch name {
	case internal.StageInstall:
		return c.Retry.Install.Policy()
	case internal.StageWait:
		return c.Retry.Wait.Policy()
	case internal.StageSleep:
		return c.Retry.Sleep.Policy()
	case internal.StageTest:
		return c.Retry.Test.Policy()
	case internal.StageUninstall:
		return c.Retry.Uninstall.Policy()
	}
	return internal.RetryPolicy{Attempts: 1}
}

func (c *SystemTestConfig) WaitTimeout() time.Duration {
	return time.Duration(c.Retry.Wait.Timeout) * time.Second
}

func (c *SystemTestConfig) SleepDuration() time.Duration {
	return time.Duration(c.Sleep) * time.Second
}

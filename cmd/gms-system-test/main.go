// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/config"
	"github.com/SNL-GMS/GMS-PI23/internal/guard"
	"github.com/SNL-GMS/GMS-PI23/internal/kube"
	"github.com/SNL-GMS/GMS-PI23/internal/reports"
	"github.com/SNL-GMS/GMS-PI23/internal/secrets"
	"github.com/SNL-GMS/GMS-PI23/internal/shell"
	"github.com/SNL-GMS/GMS-PI23/internal/summary"
	"github.com/SNL-GMS/GMS-PI23/internal/systemtest"
)

const description = `Stand up a GMS instance, wait for it to be ready, run a test augmentation
against it and tear it down again. Any subset of the stages can be run, e.g.
only 'test' against an existing instance.`

// configFileName holds the effective configuration, credentials included,
// inside the report directory.
const configFileName = "config.yaml"

// version is stamped at build time.
var version = "dev"

func main() {
	exitCode := 0
	cobraCmd := &cobra.Command{
		Use:          "gms-system-test",
		Short:        "Run a system test against a GMS instance",
		Long:         description,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			values, err := overrides(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(configFile, values)
			if err != nil {
				return err
			}
			exitCode, err = run(cmd.Context(), cfg)
			return err
		},
	}
	addFlags(cobraCmd.Flags())

	if err := cobraCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func run(ctx context.Context, cfg *config.SystemTestConfig) (int, error) {
	bundle, err := reports.CreateBundle(cfg.ReportsParent, time.Now())
	if err != nil {
		return 1, err
	}
	if err := internal.InitLogger(cfg.LogLevel, bundle.Dir); err != nil {
		return 1, fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer internal.SyncLogger()
	logger := internal.Logger()
	if data, err := config.SerializeToYAML(cfg); err != nil {
		logger.Warnf("Failed to serialize the configuration: %v", err)
	} else if err := os.WriteFile(filepath.Join(bundle.Dir, configFileName), data, 0o600); err != nil {
		logger.Warnf("Failed to save the configuration: %v", err)
	}

	credentialsDir := cfg.CredentialsDir
	if credentialsDir == "" {
		if credentialsDir, err = secrets.DefaultDir(); err != nil {
			logger.Warnf("Reporting credentials will not be kept: %v", err)
		}
	}
	var credentials systemtest.CredentialStore
	if credentialsDir != "" {
		credentials = secrets.NewFileSaver(credentialsDir)
	}

	client := sync.OnceValues(func() (kubernetes.Interface, error) {
		return kube.CreateClient(cfg.KubeConfig)
	})
	lifecycle, err := systemtest.NewLifecycle(cfg, bundle, systemtest.Dependencies{
		Runner: shell.CreateRunner(cfg.DryRun, os.Stdout),
		NewOrchestrator: func(namespace string) (systemtest.Orchestrator, error) {
			c, err := client()
			if err != nil {
				return nil, err
			}
			return kube.NewCluster(c, namespace), nil
		},
		NewStore:    systemtest.MinioStoreFactory,
		Credentials: credentials,
		Out:         os.Stdout,
		CI:          os.Getenv("CI") != "",
	})
	if err != nil {
		return 1, err
	}

	exitCode := guard.CreateGuard(lifecycle).Run(ctx)

	state := lifecycle.State()
	verdict := state.Verdict()
	if verdict == systemtest.VerdictPending {
		verdict = systemtest.VerdictFailed
	}
	instance, _ := state.Instance()
	sum := &summary.Summary{
		Instance:    instance,
		Tag:         state.Tag(),
		Test:        cfg.Test,
		Verdict:     verdict.String(),
		ExitCode:    exitCode,
		TestReports: bundle.Dir,
		Stages:      summary.Stages(lifecycle.Engine().Records()),
		Commands:    lifecycle.Commands(),
		Finished:    time.Now(),
	}
	fmt.Println(sum.Render())
	if path, err := sum.Save(bundle.Dir); err != nil {
		logger.Warnf("Failed to save the run summary: %v", err)
	} else {
		logger.Infof("Run summary saved to %s", path)
	}
	return exitCode, nil
}

// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"

	"github.com/SNL-GMS/GMS-PI23/internal/kube"
	"github.com/SNL-GMS/GMS-PI23/internal/reports"
)

// Orchestrator is what the stages need from the cluster, scoped to one namespace.
type Orchestrator interface {
	ListPods(ctx context.Context) ([]corev1.Pod, error)
	PodTable(ctx context.Context) (string, error)
	WaitForAllPodsReady(ctx context.Context, timeout, interval time.Duration, onPoll func([]corev1.Pod)) error
	GetConfigMapLabels(ctx context.Context, name string) (map[string]string, error)
	GetConfigMapData(ctx context.Context, name string) (map[string]string, error)
	GetEndpoints(ctx context.Context, ingressName string) (string, []string, error)
	JobFailedToStart(ctx context.Context, name string) (bool, error)
	WaitForJob(ctx context.Context, name string, timeout time.Duration) error
	SaveJobLogs(ctx context.Context, name, dir string) error
	SaveAllLogs(ctx context.Context, dir string) error
	IsMeshEnabled(ctx context.Context) (bool, error)
}

var _ Orchestrator = (*kube.Cluster)(nil)

// OrchestratorFactory returns the Orchestrator for a namespace.
type OrchestratorFactory func(namespace string) (Orchestrator, error)

// StoreFactory connects to the reporting object store.
type StoreFactory func(cfg reports.MinioConfig) (reports.Store, error)

var _ reports.Store = (*reports.MinioStore)(nil)

func MinioStoreFactory(cfg reports.MinioConfig) (reports.Store, error) {
	return reports.NewMinioStore(cfg)
}

// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"fmt"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/reports"
)

// reportStore connects to the reporting bucket on first use. The outcome,
// error included, is kept for the rest of the run.
func (l *Lifecycle) reportStore(ctx context.Context) (reports.Store, error) {
	l.storeOnce.Do(func() {
		l.store, l.storeErr = l.connectStore(ctx)
	})
	return l.store, l.storeErr
}

func (l *Lifecycle) connectStore(ctx context.Context) (reports.Store, error) {
	logger := internal.Logger()
	reporting := l.cfg.Reporting

	orch, err := l.orchestrator()
	if err != nil {
		return nil, err
	}
	host, paths, err := orch.GetEndpoints(ctx, reporting.Augmentation)
	if err != nil {
		return nil, err
	}
	portsCluster, err := l.deps.NewOrchestrator(reporting.PortsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the cluster: %w", err)
	}
	ports, err := portsCluster.GetConfigMapData(ctx, reporting.PortsConfigMap)
	if err != nil {
		return nil, err
	}
	mesh, err := orch.IsMeshEnabled(ctx)
	if err != nil {
		return nil, err
	}
	endpoint, err := reports.ResolveEndpoint(reporting.Augmentation, host, paths, ports, mesh)
	if err != nil {
		return nil, err
	}
	if endpoint.Path != "" && endpoint.Path != "/" {
		logger.Warnf("Ignoring path %q of the reporting endpoint; the object store is reached at %s",
			endpoint.Path, endpoint.HostPort())
	}
	logger.Debugf("Reporting endpoint: %s", endpoint)

	store, err := l.deps.NewStore(reports.MinioConfig{
		Endpoint:  endpoint.HostPort(),
		AccessKey: reporting.AccessKey,
		SecretKey: reporting.SecretKey,
		Secure:    reporting.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the object store at '%s'; no results can be retrieved: %w", endpoint, err)
	}
	exists, err := store.BucketExists(ctx, reporting.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to look up the '%s' bucket at '%s': %w", reporting.Bucket, endpoint, err)
	}
	if !exists {
		return nil, &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeFatal,
			ErrorMsg: fmt.Sprintf("unable to locate the '%s' bucket at '%s'; no results can be retrieved",
				reporting.Bucket, endpoint),
		}
	}
	return store, nil
}

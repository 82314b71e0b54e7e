// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bitfield/script"
	corev1 "k8s.io/api/core/v1"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

// LogFileName is the file the logs of one container are saved to.
func LogFileName(pod, container string) string {
	return fmt.Sprintf("%s_%s.txt", pod, container)
}

func (c *Cluster) saveContainerLogs(ctx context.Context, pod corev1.Pod, container, dir string) error {
	req := c.client.CoreV1().Pods(c.namespace).GetLogs(pod.Name, &corev1.PodLogOptions{Container: container})
	stream, err := req.Stream(ctx)
	if err != nil {
		return fmt.Errorf("failed to stream logs of %s/%s: %w", pod.Name, container, err)
	}
	defer stream.Close()

	path := filepath.Join(dir, LogFileName(pod.Name, container))
	if _, err := script.NewPipe().WithReader(stream).WriteFile(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (c *Cluster) savePodLogs(ctx context.Context, pods []corev1.Pod, dir string) error {
	logger := internal.Logger()
	var firstErr error
	for _, pod := range pods {
		containers := append([]corev1.Container{}, pod.Spec.InitContainers...)
		containers = append(containers, pod.Spec.Containers...)
		for _, container := range containers {
			if err := c.saveContainerLogs(ctx, pod, container.Name, dir); err != nil {
				// Keep going; the first failure is reported once every container was tried.
				logger.Warn(err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// SaveJobLogs saves the logs of every container of every pod the job created.
func (c *Cluster) SaveJobLogs(ctx context.Context, name, dir string) error {
	pods, err := c.jobPods(ctx, name)
	if err != nil {
		return err
	}
	return c.savePodLogs(ctx, pods, dir)
}

// SaveAllLogs saves the logs of every container of every pod in the namespace.
func (c *Cluster) SaveAllLogs(ctx context.Context, dir string) error {
	pods, err := c.ListPods(ctx)
	if err != nil {
		return err
	}
	return c.savePodLogs(ctx, pods, dir)
}

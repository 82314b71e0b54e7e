// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"context"
	"errors"
	"fmt"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

const jobNameLabel = "job-name"

var ErrJobTimeout = errors.New("job did not finish in time")

// Waiting reasons after which a container will not start without someone
// changing the workload.
var failedToStartReasons = map[string]bool{
	"ErrImagePull":               true,
	"ImagePullBackOff":           true,
	"InvalidImageName":           true,
	"CreateContainerConfigError": true,
	"CreateContainerError":       true,
}

func (c *Cluster) jobPods(ctx context.Context, name string) ([]corev1.Pod, error) {
	list, err := c.client.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: fmt.Sprintf("%s=%s", jobNameLabel, name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods of job %s: %w", name, err)
	}
	return list.Items, nil
}

// JobFailedToStart is true when the job is missing or any of its pods is
// stuck in a waiting state it cannot leave on its own.
func (c *Cluster) JobFailedToStart(ctx context.Context, name string) (bool, error) {
	_, err := c.client.BatchV1().Jobs(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get job %s: %w", name, err)
	}
	pods, err := c.jobPods(ctx, name)
	if err != nil {
		return false, err
	}
	for _, pod := range pods {
		statuses := append([]corev1.ContainerStatus{}, pod.Status.InitContainerStatuses...)
		statuses = append(statuses, pod.Status.ContainerStatuses...)
		for _, cs := range statuses {
			if cs.State.Waiting != nil && failedToStartReasons[cs.State.Waiting.Reason] {
				return true, nil
			}
		}
	}
	return false, nil
}

func jobFinished(job *batchv1.Job) bool {
	for _, cond := range job.Status.Conditions {
		if (cond.Type == batchv1.JobComplete || cond.Type == batchv1.JobFailed) && cond.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// WaitForJob blocks until the job completes or fails. Whether the tests
// inside passed is read from the reports, not from the job status.
func (c *Cluster) WaitForJob(ctx context.Context, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, 5*time.Second, timeout, true, func(ctx context.Context) (bool, error) {
		job, err := c.client.BatchV1().Jobs(c.namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, fmt.Errorf("failed to get job %s: %w", name, err)
		}
		return jobFinished(job), nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if wait.Interrupted(err) {
		return fmt.Errorf("%w: %s after %s", ErrJobTimeout, name, timeout)
	}
	return err
}

// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

const (
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
)

var ErrPodsNotReady = errors.New("not all pods are ready")

func (c *Cluster) ListPods(ctx context.Context) ([]corev1.Pod, error) {
	list, err := c.client.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", c.namespace, err)
	}
	pods := list.Items
	sort.Slice(pods, func(i, j int) bool { return pods[i].Name < pods[j].Name })
	return pods, nil
}

// PodStatus is the status column kubectl would print for the pod.
func PodStatus(pod corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	if pod.Status.Phase == corev1.PodSucceeded {
		return StatusCompleted
	}
	for _, cs := range pod.Status.InitContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return "Init:" + cs.State.Waiting.Reason
		}
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return cs.State.Waiting.Reason
		}
		if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" {
			return cs.State.Terminated.Reason
		}
	}
	if pod.Status.Phase == "" {
		return string(corev1.PodPending)
	}
	return string(pod.Status.Phase)
}

func readyContainers(pod corev1.Pod) (int, int) {
	ready := 0
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
	}
	return ready, len(pod.Spec.Containers)
}

// PodReady holds for completed pods and for running pods with every container ready.
func PodReady(pod corev1.Pod) bool {
	switch PodStatus(pod) {
	case StatusCompleted:
		return true
	case StatusRunning:
		ready, total := readyContainers(pod)
		return ready == total
	}
	return false
}

// AllPodsReady is false for an empty namespace.
func AllPodsReady(pods []corev1.Pod) bool {
	if len(pods) == 0 {
		return false
	}
	for _, pod := range pods {
		if !PodReady(pod) {
			return false
		}
	}
	return true
}

// FirstNotReady prefers pods that are not running over pods that are running
// with containers still starting. It returns "" when every pod is ready.
func FirstNotReady(pods []corev1.Pod) string {
	notReady := ""
	for _, pod := range pods {
		status := PodStatus(pod)
		if status != StatusRunning && status != StatusCompleted {
			return pod.Name
		}
		if notReady == "" && !PodReady(pod) {
			notReady = pod.Name
		}
	}
	return notReady
}

// RenderPodTable lays the pods out the way `kubectl get pods` does.
func RenderPodTable(pods []corev1.Pod, now time.Time) string {
	rows := [][]string{}
	for _, pod := range pods {
		ready, total := readyContainers(pod)
		restarts := 0
		for _, cs := range pod.Status.ContainerStatuses {
			restarts += int(cs.RestartCount)
		}
		age := "<unknown>"
		if !pod.CreationTimestamp.IsZero() {
			age = duration.HumanDuration(now.Sub(pod.CreationTimestamp.Time))
		}
		rows = append(rows, []string{
			pod.Name,
			fmt.Sprintf("%d/%d", ready, total),
			PodStatus(pod),
			strconv.Itoa(restarts),
			age,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "READY", "STATUS", "RESTARTS", "AGE").
		Rows(rows...).
		String()
}

func (c *Cluster) PodTable(ctx context.Context) (string, error) {
	pods, err := c.ListPods(ctx)
	if err != nil {
		return "", err
	}
	return RenderPodTable(pods, time.Now()), nil
}

// WaitForAllPodsReady polls every interval until all pods are ready. onPoll
// sees the pods after every poll that did not succeed. It returns
// ErrPodsNotReady when timeout elapses first.
func (c *Cluster) WaitForAllPodsReady(ctx context.Context, timeout, interval time.Duration, onPoll func([]corev1.Pod)) error {
	logger := internal.Logger()
	if interval <= 0 {
		interval = time.Second
	}
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		pods, err := c.ListPods(ctx)
		if err != nil {
			logger.Warnf("Failed to list pods, will retry: %v", err)
			return false, nil
		}
		if AllPodsReady(pods) {
			return true, nil
		}
		if onPoll != nil {
			onPoll(pods)
		}
		return false, nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if wait.Interrupted(err) {
		return fmt.Errorf("%w after %s", ErrPodsNotReady, timeout)
	}
	return err
}

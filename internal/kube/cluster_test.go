// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package kube_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/SNL-GMS/GMS-PI23/internal/kube"
)

const namespace = "gms-system-test-abc"

type ClusterTest struct {
	suite.Suite
	ctx context.Context
}

func TestCluster(t *testing.T) {
	suite.Run(t, new(ClusterTest))
}

func (s *ClusterTest) SetupTest() {
	s.ctx = context.Background()
}

func (s *ClusterTest) cluster(objects ...runtime.Object) *kube.Cluster {
	return kube.NewCluster(fake.NewSimpleClientset(objects...), namespace)
}

func runningPod(name string, ready bool, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace, Labels: labels},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:  "app",
				Ready: ready,
				State: corev1.ContainerState{Running: &corev1.ContainerStateRunning{}},
			}},
		},
	}
}

func completedPod(name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
		Status:     corev1.PodStatus{Phase: corev1.PodSucceeded},
	}
}

func waitingPod(name, reason string, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace, Labels: labels},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "app"}}},
		Status: corev1.PodStatus{
			Phase: corev1.PodPending,
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:  "app",
				State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: reason}},
			}},
		},
	}
}

func (s *ClusterTest) TestPodReadiness() {
	s.True(kube.PodReady(*runningPod("a", true, nil)))
	s.False(kube.PodReady(*runningPod("b", false, nil)))
	s.True(kube.PodReady(*completedPod("c")))
	s.False(kube.PodReady(*waitingPod("d", "ContainerCreating", nil)))
	s.Equal("ContainerCreating", kube.PodStatus(*waitingPod("d", "ContainerCreating", nil)))
	s.Equal(kube.StatusCompleted, kube.PodStatus(*completedPod("c")))

	s.False(kube.AllPodsReady(nil))
	s.True(kube.AllPodsReady([]corev1.Pod{*runningPod("a", true, nil), *completedPod("c")}))
}

func (s *ClusterTest) TestFirstNotReadyPrefersNotRunning() {
	pods := []corev1.Pod{
		*runningPod("a", true, nil),
		*runningPod("b", false, nil),
		*waitingPod("c", "ImagePullBackOff", nil),
	}
	s.Equal("c", kube.FirstNotReady(pods))
	s.Equal("b", kube.FirstNotReady(pods[:2]))
	s.Equal("", kube.FirstNotReady(pods[:1]))
}

func (s *ClusterTest) TestPodTable() {
	table, err := s.cluster(runningPod("web", false, nil), completedPod("init-db")).PodTable(s.ctx)
	s.Require().NoError(err)
	s.Contains(table, "NAME")
	s.Contains(table, "web")
	s.Contains(table, "0/1")
	s.Contains(table, kube.StatusCompleted)
}

func (s *ClusterTest) TestWaitForAllPodsReady() {
	cluster := s.cluster(runningPod("a", true, nil), completedPod("b"))
	s.NoError(cluster.WaitForAllPodsReady(s.ctx, time.Second, 10*time.Millisecond, nil))
}

func (s *ClusterTest) TestWaitForAllPodsReadyTimeout() {
	cluster := s.cluster(runningPod("a", true, nil), runningPod("b", false, nil))
	polls := 0
	err := cluster.WaitForAllPodsReady(s.ctx, 100*time.Millisecond, 10*time.Millisecond, func(pods []corev1.Pod) {
		polls++
		s.Len(pods, 2)
	})
	s.ErrorIs(err, kube.ErrPodsNotReady)
	s.Positive(polls)
}

func (s *ClusterTest) TestConfigMaps() {
	cluster := s.cluster(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "gms",
			Namespace: namespace,
			Labels:    map[string]string{"gms/image-tag": "develop"},
		},
		Data: map[string]string{"key": "value"},
	})

	labels, err := cluster.GetConfigMapLabels(s.ctx, "gms")
	s.Require().NoError(err)
	s.Equal("develop", labels["gms/image-tag"])

	data, err := cluster.GetConfigMapData(s.ctx, "gms")
	s.Require().NoError(err)
	s.Equal(map[string]string{"key": "value"}, data)

	missing, err := cluster.InNamespace("gms").GetConfigMapData(s.ctx, "ingress-ports-config")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *ClusterTest) TestGetEndpoints() {
	cluster := s.cluster(&networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{Name: "minio-test-reports", Namespace: namespace},
		Spec: networkingv1.IngressSpec{Rules: []networkingv1.IngressRule{{
			Host: "host.name",
			IngressRuleValue: networkingv1.IngressRuleValue{HTTP: &networkingv1.HTTPIngressRuleValue{
				Paths: []networkingv1.HTTPIngressPath{{Path: "/"}},
			}},
		}}},
	})

	host, paths, err := cluster.GetEndpoints(s.ctx, "minio-test-reports")
	s.Require().NoError(err)
	s.Equal("host.name", host)
	s.Equal([]string{"/"}, paths)

	host, paths, err = cluster.GetEndpoints(s.ctx, "missing")
	s.Require().NoError(err)
	s.Empty(host)
	s.Nil(paths)
}

func (s *ClusterTest) TestIsMeshEnabled() {
	cluster := s.cluster(&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{
		Name:   namespace,
		Labels: map[string]string{"istio-injection": "enabled"},
	}})
	enabled, err := cluster.IsMeshEnabled(s.ctx)
	s.Require().NoError(err)
	s.True(enabled)

	_, err = cluster.InNamespace("other").IsMeshEnabled(s.ctx)
	s.Error(err)
}

func (s *ClusterTest) TestJobs() {
	jobLabels := map[string]string{"job-name": "jest"}
	cluster := s.cluster(
		&batchv1.Job{
			ObjectMeta: metav1.ObjectMeta{Name: "jest", Namespace: namespace},
			Status: batchv1.JobStatus{Conditions: []batchv1.JobCondition{{
				Type:   batchv1.JobComplete,
				Status: corev1.ConditionTrue,
			}}},
		},
		&batchv1.Job{ObjectMeta: metav1.ObjectMeta{Name: "cypress", Namespace: namespace}},
		waitingPod("cypress-x1", "ImagePullBackOff", map[string]string{"job-name": "cypress"}),
		runningPod("jest-x1", true, jobLabels),
	)

	failed, err := cluster.JobFailedToStart(s.ctx, "jest")
	s.Require().NoError(err)
	s.False(failed)

	failed, err = cluster.JobFailedToStart(s.ctx, "cypress")
	s.Require().NoError(err)
	s.True(failed)

	failed, err = cluster.JobFailedToStart(s.ctx, "missing")
	s.Require().NoError(err)
	s.True(failed)

	s.NoError(cluster.WaitForJob(s.ctx, "jest", time.Second))
	s.ErrorIs(cluster.WaitForJob(s.ctx, "cypress", 50*time.Millisecond), kube.ErrJobTimeout)
}

func (s *ClusterTest) TestSaveLogs() {
	dir := s.T().TempDir()
	cluster := s.cluster(
		runningPod("jest-x1", true, map[string]string{"job-name": "jest"}),
		runningPod("web", true, nil),
	)

	s.Require().NoError(cluster.SaveJobLogs(s.ctx, "jest", dir))
	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	s.Len(entries, 1)

	s.Require().NoError(cluster.SaveAllLogs(s.ctx, dir))
	s.FileExists(filepath.Join(dir, kube.LogFileName("web", "app")))
	data, err := os.ReadFile(filepath.Join(dir, kube.LogFileName("jest-x1", "app")))
	s.Require().NoError(err)
	s.Equal("fake logs", string(data))
}

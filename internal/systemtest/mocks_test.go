// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	corev1 "k8s.io/api/core/v1"

	"github.com/SNL-GMS/GMS-PI23/internal/shell"
)

type OrchestratorMock struct {
	mock.Mock
	// polled is handed to the onPoll callback of WaitForAllPodsReady.
	polled []corev1.Pod
}

func (m *OrchestratorMock) ListPods(ctx context.Context) ([]corev1.Pod, error) {
	args := m.Called(ctx)
	pods, _ := args.Get(0).([]corev1.Pod)
	return pods, args.Error(1)
}

func (m *OrchestratorMock) PodTable(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *OrchestratorMock) WaitForAllPodsReady(ctx context.Context, timeout, interval time.Duration, onPoll func([]corev1.Pod)) error {
	if onPoll != nil && m.polled != nil {
		onPoll(m.polled)
	}
	args := m.Called(ctx, timeout, interval)
	return args.Error(0)
}

func (m *OrchestratorMock) GetConfigMapLabels(ctx context.Context, name string) (map[string]string, error) {
	args := m.Called(ctx, name)
	labels, _ := args.Get(0).(map[string]string)
	return labels, args.Error(1)
}

func (m *OrchestratorMock) GetConfigMapData(ctx context.Context, name string) (map[string]string, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).(map[string]string)
	return data, args.Error(1)
}

func (m *OrchestratorMock) GetEndpoints(ctx context.Context, ingressName string) (string, []string, error) {
	args := m.Called(ctx, ingressName)
	paths, _ := args.Get(1).([]string)
	return args.String(0), paths, args.Error(2)
}

func (m *OrchestratorMock) JobFailedToStart(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *OrchestratorMock) WaitForJob(ctx context.Context, name string, timeout time.Duration) error {
	args := m.Called(ctx, name, timeout)
	return args.Error(0)
}

func (m *OrchestratorMock) SaveJobLogs(ctx context.Context, name, dir string) error {
	args := m.Called(ctx, name, dir)
	return args.Error(0)
}

func (m *OrchestratorMock) SaveAllLogs(ctx context.Context, dir string) error {
	args := m.Called(ctx, dir)
	return args.Error(0)
}

func (m *OrchestratorMock) IsMeshEnabled(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type RunnerMock struct {
	mock.Mock

	mutex    sync.Mutex
	commands []string
}

func (m *RunnerMock) Run(ctx context.Context, input shell.RunnerInput) (*shell.RunnerOutput, error) {
	m.mutex.Lock()
	m.commands = append(m.commands, input.Command)
	m.mutex.Unlock()
	args := m.Called(ctx, input.Command)
	output, ok := args.Get(0).(*shell.RunnerOutput)
	if !ok {
		output = &shell.RunnerOutput{}
	}
	return output, args.Error(1)
}

func (m *RunnerMock) Note(comment string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.commands = append(m.commands, "# "+comment)
}

func (m *RunnerMock) Commands() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string{}, m.commands...)
}

func (m *RunnerMock) DryRun() bool {
	return false
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) ListObjects(ctx context.Context, bucket string) ([]string, error) {
	args := m.Called(ctx, bucket)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *StoreMock) GetObject(ctx context.Context, bucket, key, localPath string) error {
	args := m.Called(ctx, bucket, key, localPath)
	return args.Error(0)
}

func (m *StoreMock) RemoveObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *StoreMock) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package kube

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	meshInjectionLabel = "istio-injection"
	meshInjectionValue = "enabled"
)

// Cluster talks to the Kubernetes API on behalf of one namespace, which for
// an instance under test is the instance name.
type Cluster struct {
	client    kubernetes.Interface
	namespace string
}

func NewCluster(client kubernetes.Interface, namespace string) *Cluster {
	return &Cluster{client: client, namespace: namespace}
}

// CreateClient loads the kubeconfig at path, or the default loading rules
// when path is empty.
func CreateClient(kubeConfig string) (kubernetes.Interface, error) {
	var overrides clientcmd.ConfigOverrides
	var clientConfig clientcmd.ClientConfig

	if kubeConfig != "" {
		kubeConf, err := clientcmd.LoadFromFile(kubeConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
		clientConfig = clientcmd.NewDefaultClientConfig(*kubeConf, &overrides)
	} else {
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		clientConfig = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &overrides)
	}

	config, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client config: %w", err)
	}
	return kubernetes.NewForConfig(config)
}

// InNamespace returns a Cluster sharing the same client for another namespace.
func (c *Cluster) InNamespace(namespace string) *Cluster {
	return &Cluster{client: c.client, namespace: namespace}
}

// GetConfigMapLabels returns nil without error when the config map does not exist.
func (c *Cluster) GetConfigMapLabels(ctx context.Context, name string) (map[string]string, error) {
	cm, err := c.client.CoreV1().ConfigMaps(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", c.namespace, name, err)
	}
	return cm.Labels, nil
}

// GetConfigMapData returns nil without error when the config map does not exist.
func (c *Cluster) GetConfigMapData(ctx context.Context, name string) (map[string]string, error) {
	cm, err := c.client.CoreV1().ConfigMaps(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", c.namespace, name, err)
	}
	return cm.Data, nil
}

// GetEndpoints returns the host and paths of the first rule of an ingress.
// An empty host means the ingress could not be found.
func (c *Cluster) GetEndpoints(ctx context.Context, ingressName string) (string, []string, error) {
	ingress, err := c.client.NetworkingV1().Ingresses(c.namespace).Get(ctx, ingressName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to get ingress %s/%s: %w", c.namespace, ingressName, err)
	}
	if len(ingress.Spec.Rules) == 0 {
		return "", nil, nil
	}
	rule := ingress.Spec.Rules[0]
	paths := []string{}
	if rule.HTTP != nil {
		for _, p := range rule.HTTP.Paths {
			paths = append(paths, p.Path)
		}
	}
	return rule.Host, paths, nil
}

func (c *Cluster) IsMeshEnabled(ctx context.Context) (bool, error) {
	ns, err := c.client.CoreV1().Namespaces().Get(ctx, c.namespace, metav1.GetOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to get namespace %s: %w", c.namespace, err)
	}
	return ns.Labels[meshInjectionLabel] == meshInjectionValue, nil
}

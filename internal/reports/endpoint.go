// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"fmt"
)

const (
	meshPortKey    = "istio_port"
	ingressPortKey = "nginx_port"
)

// Endpoint is where the reporting augmentation can be reached from outside
// the cluster.
type Endpoint struct {
	Host string
	Port string
	Path string
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%s%s", e.Host, e.Port, e.Path)
}

func (e Endpoint) HostPort() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}

// ResolveEndpoint combines the ingress of the reporting augmentation with the
// ingress port of the cluster. The first path of the ingress is used.
func ResolveEndpoint(name, host string, paths []string, ports map[string]string, meshEnabled bool) (Endpoint, error) {
	if host == "" || len(paths) == 0 {
		return Endpoint{}, fmt.Errorf("failed to locate the `%s` endpoint", name)
	}
	portKey := ingressPortKey
	if meshEnabled {
		portKey = meshPortKey
	}
	port := ports[portKey]
	if port == "" {
		return Endpoint{}, fmt.Errorf("failed to get the port for the `%s` endpoint", name)
	}
	return Endpoint{Host: host, Port: port, Path: paths[0]}, nil
}

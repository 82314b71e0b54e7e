// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package systemtest

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	corev1 "k8s.io/api/core/v1"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/kube"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			MarginLeft(11)
	titleStyle = lipgloss.NewStyle().Bold(true)
	lineStyle  = lipgloss.NewStyle().MarginLeft(11)
)

func panel(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n" + body)
}

func (l *Lifecycle) display(s string) {
	fmt.Fprintln(l.deps.Out, s)
}

// showWaitingPods is called after every readiness poll that found pods not
// ready. CI only gets the name of one pod still being waited for.
func (l *Lifecycle) showWaitingPods(pods []corev1.Pod) {
	if l.deps.CI {
		if name := kube.FirstNotReady(pods); name != "" {
			l.display(lineStyle.Render("Waiting for pod:  " + name))
		}
		return
	}
	instance, _ := l.state.Instance()
	l.display(panel(fmt.Sprintf("Pods for Instance '%s'", instance), kube.RenderPodTable(pods, time.Now())))
}

func (l *Lifecycle) showPodTable(ctx context.Context, orch Orchestrator) {
	table, err := orch.PodTable(ctx)
	if err != nil {
		internal.Logger().Warnf("Failed to list pods: %v", err)
		return
	}
	instance, _ := l.state.Instance()
	l.display(panel(fmt.Sprintf("Pods for Instance '%s'", instance), table))
}

// logFiles lists the saved logs, oldest first.
func logFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	type file struct {
		name    string
		modTime time.Time
	}
	files := []file{}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, file{name: entry.Name(), modTime: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.name)
	}
	return names
}

func (l *Lifecycle) showSavedLogs() {
	files := logFiles(l.bundle.LogDir)
	if l.deps.CI {
		latest := ""
		if len(files) > 0 {
			latest = files[len(files)-1]
		}
		l.display(lineStyle.Render("Saving Logs:  " + latest))
		return
	}
	l.display(panel("Saving Logs", strings.Join(files, "\n")))
}

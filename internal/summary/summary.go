// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

const FileName = "summary.yaml"

type Stage struct {
	Name     string `yaml:"name"`
	Outcome  string `yaml:"outcome"`
	Duration string `yaml:"duration"`
	Error    string `yaml:"error,omitempty"`
}

// Summary is everything a run did, in the order it did it.
type Summary struct {
	Instance    string    `yaml:"instance,omitempty"`
	Tag         string    `yaml:"tag,omitempty"`
	Test        string    `yaml:"test,omitempty"`
	Verdict     string    `yaml:"verdict"`
	ExitCode    int       `yaml:"exitCode"`
	TestReports string    `yaml:"testReports"`
	Stages      []Stage   `yaml:"stages"`
	Commands    []string  `yaml:"commands"`
	Finished    time.Time `yaml:"finished"`
}

// Stages converts the engine records. A stage that ran more than once, such
// as an uninstall forced after a failure, appears once per run.
func Stages(records []internal.StageRecord) []Stage {
	stages := make([]Stage, 0, len(records))
	for _, record := range records {
		stage := Stage{
			Name:     string(record.Name),
			Outcome:  string(record.Outcome),
			Duration: record.Duration().Round(time.Second).String(),
		}
		if record.Err != nil {
			stage.Error = record.Err.Error()
		}
		stages = append(stages, stage)
	}
	return stages
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	passedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	commandStyle = lipgloss.NewStyle().MarginLeft(2)
)

func (s *Summary) Render() string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Stages"))
	b.WriteString("\n")
	rows := [][]string{}
	for _, stage := range s.Stages {
		rows = append(rows, []string{stage.Name, stage.Outcome, stage.Duration})
	}
	b.WriteString(table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STAGE", "OUTCOME", "DURATION").
		Rows(rows...).
		String())
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Commands executed"))
	b.WriteString("\n")
	for _, command := range s.Commands {
		b.WriteString(commandStyle.Render(command))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Test reports"))
	b.WriteString("\n")
	b.WriteString(commandStyle.Render(s.TestReports))
	b.WriteString("\n\n")

	style := failedStyle
	if s.ExitCode == 0 {
		style = passedStyle
	}
	b.WriteString(style.Render(fmt.Sprintf("Verdict: %s", strings.ToUpper(s.Verdict))))
	b.WriteString("\n")
	return b.String()
}

// Save writes the summary next to the test reports and returns its path.
func (s *Summary) Save(dir string) (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Summary{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

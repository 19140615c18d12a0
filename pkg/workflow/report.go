/*
Copyright © 2025 The Radius Authors
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/radius-project/spoke/pkg/tools"
)

// StepStatus is the outcome of one workflow step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepReport records one executed step.
type StepReport struct {
	Name     string        `json:"name" yaml:"name"`
	Status   StepStatus    `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// RunReport is the serialized outcome of a workflow run.
type RunReport struct {
	Command       string        `json:"command" yaml:"command"`
	StartedAt     time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
	Steps         []StepReport  `json:"steps" yaml:"steps"`
	Tools         []tools.Tool  `json:"tools,omitempty" yaml:"tools,omitempty"`
	RegistryAddr  string        `json:"registryAddr,omitempty" yaml:"registryAddr,omitempty"`
	KubeContext   string        `json:"kubeContext,omitempty" yaml:"kubeContext,omitempty"`
	RecipeSummary string        `json:"recipeSummary,omitempty" yaml:"recipeSummary,omitempty"`
	ImageSummary  string        `json:"imageSummary,omitempty" yaml:"imageSummary,omitempty"`
	ChartPaths    []string      `json:"chartPaths,omitempty" yaml:"chartPaths,omitempty"`
	InstallerPath string        `json:"installerPath,omitempty" yaml:"installerPath,omitempty"`
}

var stepTitle = cases.Title(language.English)

func newRunReport(command string, now time.Time) *RunReport {
	return &RunReport{Command: command, StartedAt: now}
}

func (r *RunReport) record(name string, status StepStatus, duration time.Duration, detail string) {
	r.Steps = append(r.Steps, StepReport{
		Name:     stepTitle.String(name),
		Status:   status,
		Duration: duration,
		Detail:   detail,
	})
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taskboard/assignment"
	"taskboard/membership"
	"taskboard/status"
)

// snapshot is a directory and task dump, written as YAML or JSON.
type snapshot struct {
	Employees []membership.Employee `yaml:"employees"`
	Teams     []membership.Team     `yaml:"teams"`
	Tasks     []snapshotTask        `yaml:"tasks"`
}

type snapshotTask struct {
	status.Task `yaml:",inline"`
	Name        string `yaml:"name"`
	AssignedTo  []any  `yaml:"assignedTo"`
}

// loadSnapshot reads a snapshot file. JSON input is valid YAML, so one
// decoder serves both.
func loadSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func (s *snapshot) index() *membership.Index {
	return membership.Build(s.Employees, s.Teams)
}

func (t snapshotTask) label() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Name
}

func (t snapshotTask) entries(idx *membership.Index) []assignment.Entry {
	return assignment.Normalize(t.AssignedTo, idx)
}

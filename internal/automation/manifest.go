package automation

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsboard/opsboard/internal/task"
	"github.com/opsboard/opsboard/pkg/cerr"
)

// Manifest is the YAML document the automation process submits to create
// tasks in bulk.
type Manifest struct {
	ProjectID string         `yaml:"project_id"`
	Tasks     []ManifestTask `yaml:"tasks"`
}

type ManifestTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	AssignedTo  string `yaml:"assigned_to"`
}

// ParseManifest decodes and validates a bulk-task manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "malformed task manifest", err)
	}
	if len(m.Tasks) == 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "task manifest contains no tasks", nil)
	}
	for i, mt := range m.Tasks {
		if strings.TrimSpace(mt.Title) == "" {
			return nil, cerr.NewError(cerr.InvalidArgument,
				fmt.Sprintf("task manifest entry %d is missing a title", i), nil)
		}
	}
	return &m, nil
}

func (m *Manifest) createRequests() []task.CreateRequest {
	reqs := make([]task.CreateRequest, 0, len(m.Tasks))
	for _, mt := range m.Tasks {
		reqs = append(reqs, task.CreateRequest{
			ProjectID:   m.ProjectID,
			Title:       mt.Title,
			Description: mt.Description,
			AssignedTo:  mt.AssignedTo,
		})
	}
	return reqs
}

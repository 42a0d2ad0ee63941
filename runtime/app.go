package runtime

import (
	"fmt"
	"path/filepath"
)

type App struct {
	Container *Container
	Workflows map[string]Workflow
}

// NewApp loads every workflow file found in workflowsDir. An empty dir
// string yields an app without stored workflows.
func NewApp(container *Container, workflowsDir string, loader WorkflowLoader) (*App, error) {
	app := App{
		Container: container,
		Workflows: make(map[string]Workflow),
	}

	if workflowsDir == "" {
		return &app, nil
	}
	if loader == nil {
		loader = NewYAMLLoader()
	}

	for _, pattern := range loader.Extensions() {
		files, err := filepath.Glob(filepath.Join(workflowsDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("error reading directory: %w", err)
		}

		for _, file := range files {
			workflow, err := loader.Load(file)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if workflow.ID == "" {
				workflow.ID = trimExt(filepath.Base(file))
			}
			if err := app.RegisterWorkflow(workflow); err != nil {
				return nil, err
			}
		}
	}

	return &app, nil
}

func (a *App) RegisterWorkflow(workflow Workflow) error {
	if _, err := a.Container.GetNode(workflow.Node); err != nil {
		return fmt.Errorf("workflow %s: %w", workflow.ID, err)
	}
	if _, exists := a.Workflows[workflow.ID]; exists {
		return fmt.Errorf("workflow %s registered twice", workflow.ID)
	}
	a.Workflows[workflow.ID] = workflow
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

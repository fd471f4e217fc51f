package flowfile

import (
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Flow is the format-agnostic result of loading one or more flow files.
type Flow struct {
	// Tasks are in file order, files sorted by path.
	Tasks []*Task
	// Files lists every file that contributed tasks.
	Files []string
}

// Task is one node of the flow.
type Task struct {
	Name      string
	Runner    string
	DependsOn []string
	// Timeout bounds the task's work unit; zero means no bound.
	Timeout time.Duration
	// Arguments is the raw 'arguments' body, or an empty body.
	Arguments hcl.Body
	// EvalCtx is the context the arguments must be decoded with.
	EvalCtx *hcl.EvalContext
	// DeclRange is where the task block was declared, for diagnostics.
	DeclRange hcl.Range
}

// Task returns the task with the given name.
func (f *Flow) Task(name string) (*Task, bool) {
	for _, t := range f.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

package flowfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoTasks is returned when the given paths contain no task blocks.
var ErrNoTasks = errors.New("no tasks found")

// rootSchema describes the top-level blocks of a flow file.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "task", LabelNames: []string{"runner", "name"}},
	},
}

type taskBody struct {
	DependsOn []string        `hcl:"depends_on,optional"`
	Timeout   *string         `hcl:"timeout,optional"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
}

type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Loader reads flow files from disk.
type Loader struct {
	// Environ supplies the variables exposed as env. Defaults to os.Environ.
	Environ func() []string
}

// NewLoader creates a loader that exposes the process environment.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// Load parses every .hcl file found under paths and returns the combined flow.
// Task names must be unique and every depends_on entry must name a task.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Flow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Flow loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered flow files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := l.evalContext()
	flow := &Flow{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse flow file %s: %w", file, diags)
		}
		tasks, err := decodeFile(hclFile.Body, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to decode flow file %s: %w", file, err)
		}
		if len(tasks) > 0 {
			flow.Files = append(flow.Files, file)
		}
		flow.Tasks = append(flow.Tasks, tasks...)
	}

	if err := validate(flow); err != nil {
		return nil, err
	}
	logger.Debug("Flow loaded.", "tasks", len(flow.Tasks), "files", len(flow.Files))
	return flow, nil
}

// Parse decodes a single in-memory flow file. filename is used in diagnostics.
func (l *Loader) Parse(src []byte, filename string) (*Flow, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse flow %s: %w", filename, diags)
	}
	tasks, err := decodeFile(hclFile.Body, l.evalContext())
	if err != nil {
		return nil, fmt.Errorf("failed to decode flow %s: %w", filename, err)
	}
	flow := &Flow{Tasks: tasks, Files: []string{filename}}
	if err := validate(flow); err != nil {
		return nil, err
	}
	return flow, nil
}

func decodeFile(body hcl.Body, evalCtx *hcl.EvalContext) ([]*Task, error) {
	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	tasks := make([]*Task, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		var b taskBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &b); diags.HasErrors() {
			return nil, diags
		}

		t := &Task{
			Runner:    block.Labels[0],
			Name:      block.Labels[1],
			DependsOn: b.DependsOn,
			Arguments: hcl.EmptyBody(),
			EvalCtx:   evalCtx,
			DeclRange: block.DefRange,
		}
		if b.Arguments != nil {
			t.Arguments = b.Arguments.Body
		}
		if b.Timeout != nil {
			d, err := time.ParseDuration(*b.Timeout)
			if err != nil {
				return nil, fmt.Errorf("%s: task %q has invalid timeout %q: %w", block.DefRange, t.Name, *b.Timeout, err)
			}
			t.Timeout = d
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func validate(flow *Flow) error {
	if len(flow.Tasks) == 0 {
		return ErrNoTasks
	}

	var errs []error
	seen := make(map[string]*Task, len(flow.Tasks))
	for _, t := range flow.Tasks {
		if prev, ok := seen[t.Name]; ok {
			errs = append(errs, fmt.Errorf("%s: duplicate task %q, first declared at %s", t.DeclRange, t.Name, prev.DeclRange))
			continue
		}
		seen[t.Name] = t
	}
	for _, t := range flow.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := seen[dep]; !ok {
				errs = append(errs, fmt.Errorf("%s: task %q depends on non-existent task %q", t.DeclRange, t.Name, dep))
			}
		}
	}
	return errors.Join(errs...)
}

// evalContext exposes the environment as the env object.
func (l *Loader) evalContext() *hcl.EvalContext {
	environ := os.Environ
	if l.Environ != nil {
		environ = l.Environ
	}

	vars := make(map[string]cty.Value)
	for _, kv := range environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

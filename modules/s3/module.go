// Package s3 provides a runner that uploads a local file to a pre-signed
// object storage URL.
package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/registry"
)

// ErrUnsupportedAction is returned for actions other than upload.
var ErrUnsupportedAction = errors.New("unsupported s3 action")

// Module implements the registry.Module interface for this package.
type Module struct {
	Client *http.Client
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	Action     string `hcl:"action,optional"`
	SourcePath string `hcl:"source_path"`
	UploadURL  string `hcl:"upload_url"`
}

func validate(input any) error {
	in := input.(*Input)
	if a := strings.ToLower(in.Action); a != "" && a != "upload" {
		return fmt.Errorf("%w: '%s'", ErrUnsupportedAction, in.Action)
	}
	return nil
}

// Run is the handler for the s3 runner.
func (m *Module) Run(ctx context.Context, task string, input any) error {
	in := input.(*Input)
	if err := validate(in); err != nil {
		return err
	}
	return m.upload(ctx, in)
}

func (m *Module) upload(ctx context.Context, in *Input) error {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(in.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file '%s': %w", in.SourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file stats for '%s': %w", in.SourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, in.UploadURL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(in.SourcePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file.", "source", in.SourcePath, "size", stat.Size(), "content_type", contentType)

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded file.", "status", resp.Status)
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("s3", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Validate: validate,
		Fn:       m.Run,
	})
}

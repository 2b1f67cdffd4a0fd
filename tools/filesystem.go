package tools

import (
	"context"
	"os"
	"path/filepath"

	"github.com/modumentor/bridge/config"
	"github.com/modumentor/bridge/errors"
)

// ReadFileTool implements the tool for reading a file.
type ReadFileTool struct {
	fsAccess *config.FilesystemAccess
}

func (t *ReadFileTool) Name() string { return "read_file" }
func (t *ReadFileTool) Description() string {
	return "Reads the entire content of a file. Args: path (string)."
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok {
		return "", errors.New("missing or invalid 'path' argument")
	}

	hidden, err := isPathRestricted(path, t.fsAccess.Hidden)
	if err != nil {
		return "", err
	}
	if hidden {
		return "", errors.New("access denied: path '%s' is hidden", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read file '%s'", path)
	}
	return string(content), nil
}

func (t *ReadFileTool) ProbeQuery() string { return "read a scratch file" }

// Probe round-trips a scratch file through the real Execute path so the
// restriction globs are exercised too.
func (t *ReadFileTool) Probe(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "bridge-probe-")
	if err != nil {
		return "", errors.Wrapf(err, "could not create probe directory")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "probe.txt")
	if err := os.WriteFile(path, []byte("probe"), 0644); err != nil {
		return "", errors.Wrapf(err, "could not write probe file")
	}
	if _, err := t.Execute(ctx, map[string]interface{}{"path": path}); err != nil {
		return "", err
	}
	return "File reading is available and working", nil
}

// WriteFileTool implements the tool for writing to a file.
type WriteFileTool struct {
	fsAccess *config.FilesystemAccess
}

func (t *WriteFileTool) Name() string { return "write_file" }
func (t *WriteFileTool) Description() string {
	return "Writes content to a file, replacing it entirely. Args: path (string), content (string)."
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	path, pathOk := args["path"].(string)
	content, contentOk := args["content"].(string)
	if !pathOk || !contentOk {
		return "", errors.New("missing or invalid 'path' or 'content' arguments")
	}

	hidden, err := isPathRestricted(path, t.fsAccess.Hidden)
	if err != nil {
		return "", err
	}
	if hidden {
		return "", errors.New("access denied: path '%s' is hidden", path)
	}
	readOnly, err := isPathRestricted(path, t.fsAccess.ReadOnly)
	if err != nil {
		return "", err
	}
	if readOnly {
		return "", errors.New("access denied: path '%s' is read-only", path)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write file '%s'", path)
	}
	return "File written successfully: " + path, nil
}

func (t *WriteFileTool) ProbeQuery() string { return "write a scratch file" }

func (t *WriteFileTool) Probe(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "bridge-probe-")
	if err != nil {
		return "", errors.Wrapf(err, "could not create probe directory")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "probe.txt")
	if _, err := t.Execute(ctx, map[string]interface{}{"path": path, "content": "probe"}); err != nil {
		return "", err
	}
	return "File writing is available and working", nil
}

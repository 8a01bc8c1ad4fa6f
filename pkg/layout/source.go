package layout

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Source produces a raw keymap dump in the format printed by `dumpkeys -n`.
type Source interface {
	Invoke(ctx context.Context) (string, error)
}

type Dumpkeys struct {
	Path string
	Args []string
}

func (d Dumpkeys) Invoke(ctx context.Context) (string, error) {
	var stdout, stderr bytes.Buffer

	path := d.Path
	if path == "" {
		path = "dumpkeys"
	}
	args := d.Args
	if args == nil {
		args = []string{"-n"}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w, stderr: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// File reads a previously saved dump.
type File struct {
	Path string
}

func (f File) Invoke(context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read dump: %w", err)
	}
	return string(data), nil
}

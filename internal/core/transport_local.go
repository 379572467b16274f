package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// LocalTransport implements Transport for the local machine
type LocalTransport struct{}

func NewLocalTransport() *LocalTransport {
	return &LocalTransport{}
}

func (t *LocalTransport) Close() error {
	return nil
}

func (t *LocalTransport) Execute(ctx context.Context, cmd string) (string, error) {
	// We wrap the command string in a shell so behaviour matches remote
	// execution, where the SSH server hands the string to the login shell.
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	out, err := c.CombinedOutput()
	return string(out), err
}

func (t *LocalTransport) CopyFile(ctx context.Context, localPath, remotePath string) error {
	// For local transport, localPath and remotePath are on the same machine.
	if localPath == remotePath {
		return nil
	}
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(remotePath), 0755); err != nil {
		return err
	}
	dst, err := os.Create(remotePath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy %s -> %s: %w", localPath, remotePath, err)
	}
	return nil
}

// IsCommandAvailable reports whether cmd resolves to an executable on the
// target reachable through t.
func IsCommandAvailable(ctx context.Context, t Transport, cmd string) bool {
	_, err := t.Execute(ctx, "command -v "+cmd)
	return err == nil
}

package core

import (
	"context"
	"io"
)

// Transport is the interface for executing commands and moving files
// across different communication channels (local, SSH, etc.)
type Transport interface {
	io.Closer

	// Execute runs a command and returns its combined output
	Execute(ctx context.Context, cmd string) (string, error)

	// CopyFile sends a local file to the target system
	CopyFile(ctx context.Context, localPath, remotePath string) error
}

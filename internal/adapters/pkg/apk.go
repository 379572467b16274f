package pkg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/melih-ucgun/wrtprov/internal/core"
)

// Apk handles the apk-based OpenWrt images (24.10 and later).
type Apk struct {
	Transport core.Transport
}

func NewApk(t core.Transport) *Apk {
	return &Apk{Transport: t}
}

func (a *Apk) IsInstalled(ctx context.Context, name string) (bool, error) {
	// apk info -e prints the package name only when it is installed.
	out, err := a.Transport.Execute(ctx, "apk info -e "+shellQuote(name))
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(out) != "", nil
}

func (a *Apk) Install(ctx context.Context, name string) (string, error) {
	out, err := a.Transport.Execute(ctx, "apk add "+shellQuote(name))
	return out, err
}

func (a *Apk) InstallFile(ctx context.Context, path string, forceDeps bool) (string, error) {
	staged := stagePath(filepath.Base(path))
	if err := a.Transport.CopyFile(ctx, path, staged); err != nil {
		return "", fmt.Errorf("staging %s: %w", path, err)
	}
	defer a.Transport.Execute(ctx, "rm -f "+shellQuote(staged))

	// Sideloaded files are unsigned, so --allow-untrusted is always needed.
	cmd := "apk add --allow-untrusted"
	if forceDeps {
		cmd += " --force-broken-world"
	}
	cmd += " " + shellQuote(staged)

	out, err := a.Transport.Execute(ctx, cmd)
	return out, err
}

package pkg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/melih-ucgun/wrtprov/internal/core"
)

// Opkg speaks to the classic OpenWrt package manager through a Transport,
// so the same adapter provisions the local box or a router over SSH.
type Opkg struct {
	Transport core.Transport
}

func NewOpkg(t core.Transport) *Opkg {
	return &Opkg{Transport: t}
}

func (o *Opkg) IsInstalled(ctx context.Context, name string) (bool, error) {
	// opkg list-installed <pkg> exits 0 either way; presence shows up as
	// a "<pkg> - <version>" line on stdout.
	out, err := o.Transport.Execute(ctx, "opkg list-installed "+shellQuote(name))
	if err != nil {
		return false, fmt.Errorf("opkg query failed: %s", strings.TrimSpace(out))
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, name+" - ") {
			return true, nil
		}
	}
	return false, nil
}

func (o *Opkg) Install(ctx context.Context, name string) (string, error) {
	out, err := o.Transport.Execute(ctx, "opkg install "+shellQuote(name))
	return out, err
}

func (o *Opkg) InstallFile(ctx context.Context, path string, forceDeps bool) (string, error) {
	staged := stagePath(filepath.Base(path))
	if err := o.Transport.CopyFile(ctx, path, staged); err != nil {
		return "", fmt.Errorf("staging %s: %w", path, err)
	}
	defer o.Transport.Execute(ctx, "rm -f "+shellQuote(staged))

	cmd := "opkg install"
	if forceDeps {
		cmd += " --force-depends"
	}
	cmd += " " + shellQuote(staged)

	out, err := o.Transport.Execute(ctx, cmd)
	return out, err
}

package cmd

import (
	"fmt"

	"github.com/melih-ucgun/wrtprov/internal/adapters/fetch"
	pkgadapter "github.com/melih-ucgun/wrtprov/internal/adapters/pkg"
	"github.com/melih-ucgun/wrtprov/internal/adapters/uci"
	"github.com/melih-ucgun/wrtprov/internal/config"
	"github.com/melih-ucgun/wrtprov/internal/core"
	"github.com/melih-ucgun/wrtprov/internal/reconcile"
	"github.com/melih-ucgun/wrtprov/internal/system"
	"github.com/melih-ucgun/wrtprov/internal/transport"
)

// connect builds a detected SystemContext for the requested host. The
// caller must Close the context's transport when done.
func connect(m *config.Manifest, hostName string, dryRun bool) (*core.SystemContext, error) {
	ctx := core.NewSystemContext(dryRun)

	if hostName != "" && hostName != "localhost" {
		host, ok := m.FindHost(hostName)
		if !ok {
			return nil, fmt.Errorf("host %q is not declared in the manifest", hostName)
		}
		t, err := transport.NewSSHTransport(ctx, *host)
		if err != nil {
			return nil, err
		}
		ctx.Transport = t
	}

	system.Detect(ctx)
	return ctx, nil
}

// buildReconciler wires the adapters for the detected system. A missing
// package manager is an environmental fault: nothing can proceed.
func buildReconciler(ctx *core.SystemContext, prompter reconcile.Prompter) (*reconcile.Reconciler, error) {
	pm, err := pkgadapter.Detect(ctx)
	if err != nil {
		return nil, err
	}

	return &reconcile.Reconciler{
		Sys:    ctx,
		Pkg:    pm,
		Store:  uci.NewStore(ctx.Transport),
		Fetch:  fetch.NewHTTPFetcher(),
		Prompt: prompter,
	}, nil
}

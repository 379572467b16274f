package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/melih-ucgun/wrtprov/internal/core"
	"github.com/melih-ucgun/wrtprov/internal/naming"
)

// Reconciler brings one declared resource into agreement with the target
// system. Collaborators are injected so the logic runs against mocks in
// tests and against opkg/uci over any transport in production.
type Reconciler struct {
	Sys    *core.SystemContext
	Pkg    PackageManager
	Store  ConfigStore
	Fetch  Fetcher
	Prompt Prompter

	// ScratchDir is the base for per-acquisition temp dirs.
	// Empty means os.TempDir().
	ScratchDir string

	// taken tracks names claimed earlier in this run, so Rename never
	// hands out a key a previous spec already reconciled to.
	taken map[Kind]map[string]bool
}

// Reconcile processes a single spec to a terminal outcome. A non-nil error
// is always a *FatalError and means the remaining pipeline must stop;
// per-resource failures come back as a StateFailed outcome with nil error.
func (r *Reconciler) Reconcile(ctx context.Context, spec ResourceSpec) (Outcome, error) {
	if spec.Name == "" {
		return Outcome{}, fatal(CategoryEnvironmental, "resource spec has no name", nil)
	}

	switch spec.Kind {
	case KindPackage:
		if len(spec.Sources) == 0 {
			return Outcome{}, fatal(CategoryEnvironmental,
				fmt.Sprintf("package %s declares no source candidates", spec.Name), nil)
		}
		return r.reconcilePackage(ctx, spec)
	case KindNetworkInterface, KindFirewallZone, KindForwardingRule:
		return r.reconcileConfig(ctx, spec)
	default:
		return Outcome{}, fatal(CategoryEnvironmental,
			fmt.Sprintf("unknown resource kind %q", spec.Kind), nil)
	}
}

// Exists reports whether the resource is already present, using the same
// queries Reconcile starts with. Read-only; plan mode relies on it.
func (r *Reconciler) Exists(ctx context.Context, spec ResourceSpec) (bool, error) {
	if spec.Kind == KindPackage {
		return r.Pkg.IsInstalled(ctx, spec.Name)
	}
	_, ok, err := r.Store.Get(ctx, storeKey(spec.Kind, spec.Name))
	return ok, err
}

func (r *Reconciler) reconcilePackage(ctx context.Context, spec ResourceSpec) (Outcome, error) {
	installed, err := r.Pkg.IsInstalled(ctx, spec.Name)
	if err != nil {
		return Outcome{}, fatal(CategorySystemic, "package query failed", err)
	}
	if installed {
		return Outcome{Resource: spec.Name, Kind: spec.Kind, FinalState: StateAlreadyPresent}, nil
	}

	// Candidates run strictly in order; the first success short-circuits.
	// On full exhaustion we keep the LAST detail, since later candidates
	// reflect escalation and tend to be the more diagnostic failure.
	var lastDetail string
	for _, cand := range spec.Sources {
		if cand.Method == MethodForced {
			ok, perr := r.Prompt.Confirm(
				fmt.Sprintf("Install %s bypassing dependency checks?", spec.Name), false)
			if perr != nil {
				return Outcome{}, fatal(CategorySystemic, "confirmation prompt failed", perr)
			}
			if !ok {
				// A dependency or architecture mismatch here would hit
				// every remaining resource too, so declining stops the run.
				return Outcome{}, fatal(CategoryAborted,
					fmt.Sprintf("forced install of %s declined", spec.Name), nil)
			}
		}

		detail, aerr := r.attempt(ctx, spec, cand)
		var fe *FatalError
		if errors.As(aerr, &fe) {
			return Outcome{}, fe
		}
		if aerr == nil {
			return Outcome{
				Resource:   spec.Name,
				Kind:       spec.Kind,
				FinalState: StateInstalled,
				MethodUsed: cand.Method,
			}, nil
		}
		lastDetail = detail
		if lastDetail == "" {
			lastDetail = aerr.Error()
		}
	}

	return Outcome{
		Resource:    spec.Name,
		Kind:        spec.Kind,
		FinalState:  StateFailed,
		ErrorDetail: lastDetail,
	}, nil
}

// attempt runs one acquisition candidate. The returned detail is the text
// worth reporting when the candidate fails: the package manager's own
// diagnostic output, or the download failure with its URL.
func (r *Reconciler) attempt(ctx context.Context, spec ResourceSpec, cand Candidate) (string, error) {
	if cand.Method == MethodRepository {
		diag, err := r.Pkg.Install(ctx, spec.Name)
		if err != nil {
			return strings.TrimSpace(diag), err
		}
		return "", nil
	}

	url := cand.URL
	if url == "" {
		filename, err := naming.PackageFilename(spec.Name,
			r.Sys.Arch, r.Sys.Target, r.Sys.Subtarget, r.Sys.Release)
		if err != nil {
			return err.Error(), err
		}
		url = naming.DownloadURL(cand.BaseURL, filename, r.Sys.Release)
	}
	if url == "" {
		err := fmt.Errorf("candidate %s for %s has no url and no base url", cand.Method, spec.Name)
		return err.Error(), err
	}

	scratch, err := os.MkdirTemp(r.ScratchDir, "wrtprov-")
	if err != nil {
		return "", fatal(CategorySystemic, "cannot create scratch dir", err)
	}
	defer os.RemoveAll(scratch)

	dest := filepath.Join(scratch, filepath.Base(url))
	if err := r.Fetch.Download(ctx, url, dest); err != nil {
		detail := "download failed: " + url
		return detail, fmt.Errorf("%s: %w", detail, err)
	}

	diag, err := r.Pkg.InstallFile(ctx, dest, cand.Method == MethodForced)
	if err != nil {
		return strings.TrimSpace(diag), err
	}
	return "", nil
}

func (r *Reconciler) reconcileConfig(ctx context.Context, spec ResourceSpec) (Outcome, error) {
	name := spec.Name
	key := storeKey(spec.Kind, name)

	_, exists, err := r.Store.Get(ctx, key)
	if err != nil {
		return Outcome{}, fatal(CategorySystemic, "config store read failed", err)
	}

	if exists {
		switch spec.Kind {
		case KindForwardingRule:
			// Forwardings have no identity beyond their key; an existing
			// one is simply kept.
			return Outcome{Resource: name, Kind: spec.Kind, FinalState: StateAlreadyPresent}, nil
		default:
			resolution, perr := r.Prompt.ResolveConflict(spec.Kind, name)
			if perr != nil {
				return Outcome{}, fatal(CategorySystemic, "conflict prompt failed", perr)
			}
			switch resolution {
			case ResolutionSkip:
				return Outcome{Resource: name, Kind: spec.Kind, FinalState: StateSkipped}, nil
			case ResolutionOverwrite:
				if err := r.deleteExisting(ctx, spec.Kind, name); err != nil {
					return Outcome{}, err
				}
			case ResolutionRename:
				renamed, rerr := r.freeName(ctx, spec.Kind, name)
				if rerr != nil {
					return Outcome{}, rerr
				}
				name = renamed
				key = storeKey(spec.Kind, name)
			default:
				return Outcome{}, fatal(CategoryEnvironmental,
					fmt.Sprintf("unknown conflict resolution %q", resolution), nil)
			}
		}
	}

	if err := r.writeResource(ctx, spec.Kind, key, spec.Properties); err != nil {
		return Outcome{}, err
	}
	r.claim(spec.Kind, name)

	return Outcome{Resource: name, Kind: spec.Kind, FinalState: StateInstalled}, nil
}

// deleteExisting removes the current section and, for network interfaces,
// cascade-deletes the peer sections keyed by the interface name.
func (r *Reconciler) deleteExisting(ctx context.Context, kind Kind, name string) error {
	if kind == KindNetworkInterface {
		children, err := r.Store.ListKeys(ctx, childPattern(name))
		if err != nil {
			return fatal(CategorySystemic, "config store scan failed", err)
		}
		for _, child := range children {
			if err := r.Store.Delete(ctx, child); err != nil {
				return fatal(CategorySystemic, "config store delete failed", err)
			}
		}
	}
	if err := r.Store.Delete(ctx, storeKey(kind, name)); err != nil {
		return fatal(CategorySystemic, "config store delete failed", err)
	}
	return nil
}

// freeName finds the first unused numeric suffix for the requested name,
// checking both the store and the names claimed earlier in this run.
// "awg0" against existing {awg0, awg1, awg2} resolves to "awg3".
func (r *Reconciler) freeName(ctx context.Context, kind Kind, name string) (string, error) {
	stem := strings.TrimRight(name, "0123456789")
	if stem == "" {
		stem = name
	}
	for i := 0; ; i++ {
		candidate := stem + strconv.Itoa(i)
		if r.claimed(kind, candidate) {
			continue
		}
		_, exists, err := r.Store.Get(ctx, storeKey(kind, candidate))
		if err != nil {
			return "", fatal(CategorySystemic, "config store read failed", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (r *Reconciler) writeResource(ctx context.Context, kind Kind, key string, props map[string]string) error {
	if err := r.Store.Set(ctx, key, sectionType(kind)); err != nil {
		return fatal(CategorySystemic, "config store unwritable", err)
	}

	// Deterministic option order keeps staged batches reproducible.
	opts := make([]string, 0, len(props))
	for k := range props {
		opts = append(opts, k)
	}
	sort.Strings(opts)
	for _, opt := range opts {
		if err := r.Store.Set(ctx, key+"."+opt, props[opt]); err != nil {
			return fatal(CategorySystemic, "config store unwritable", err)
		}
	}

	if err := r.Store.Commit(ctx); err != nil {
		return fatal(CategorySystemic, "config store commit failed", err)
	}
	return nil
}

func (r *Reconciler) claim(kind Kind, name string) {
	if r.taken == nil {
		r.taken = make(map[Kind]map[string]bool)
	}
	if r.taken[kind] == nil {
		r.taken[kind] = make(map[string]bool)
	}
	r.taken[kind][name] = true
}

func (r *Reconciler) claimed(kind Kind, name string) bool {
	return r.taken[kind][name]
}

func storeKey(kind Kind, name string) string {
	switch kind {
	case KindNetworkInterface:
		return "network." + name
	default:
		return "firewall." + name
	}
}

func sectionType(kind Kind) string {
	switch kind {
	case KindNetworkInterface:
		return "interface"
	case KindFirewallZone:
		return "zone"
	default:
		return "forwarding"
	}
}

// childPattern matches the amneziawg peer sections bound to an interface.
func childPattern(name string) string {
	return "network.@amneziawg_" + name
}

package reconcile

import "context"

// Kind identifies the class of a declared resource.
type Kind string

const (
	KindPackage          Kind = "package"
	KindNetworkInterface Kind = "interface"
	KindFirewallZone     Kind = "zone"
	KindForwardingRule   Kind = "forwarding"
)

// Method identifies one acquisition strategy for a package.
type Method string

const (
	// MethodRepository installs by name through the package manager feeds.
	MethodRepository Method = "repository"
	// MethodDownload fetches the package file directly and installs it.
	MethodDownload Method = "download"
	// MethodForced is MethodDownload with dependency checks bypassed.
	// It never runs without explicit user confirmation.
	MethodForced Method = "forced"
)

// Candidate is one ordered acquisition method for a package resource.
// URL, when set, overrides the filename convention; otherwise the download
// URL is built from BaseURL and the detected system context.
type Candidate struct {
	Method  Method
	URL     string
	BaseURL string
}

// ResourceSpec is the desired state of a single resource. Package kinds
// carry at least one source candidate; the other kinds are created directly
// in the config store from Properties.
type ResourceSpec struct {
	Kind       Kind
	Name       string
	Properties map[string]string
	Sources    []Candidate
}

// FinalState is the terminal state of one reconciliation.
type FinalState string

const (
	StateAlreadyPresent FinalState = "already-present"
	StateInstalled      FinalState = "installed"
	StateSkipped        FinalState = "skipped"
	StateFailed         FinalState = "failed"
)

// Outcome is the result of reconciling one ResourceSpec. Resource holds the
// final key the resource ended up under, which differs from the spec name
// only after a Rename conflict resolution. ErrorDetail is set iff the state
// is StateFailed and carries the last attempted candidate's diagnostic.
type Outcome struct {
	Resource    string
	Kind        Kind
	FinalState  FinalState
	MethodUsed  Method
	ErrorDetail string
}

// ConflictResolution is the user's decision for a naming collision.
type ConflictResolution string

const (
	ResolutionOverwrite ConflictResolution = "overwrite"
	ResolutionSkip      ConflictResolution = "skip"
	ResolutionRename    ConflictResolution = "rename"
)

// PackageManager is the narrow contract to the system package tool
// (opkg, apk). Install and InstallFile return the tool's diagnostic output
// verbatim; a nil error means success.
type PackageManager interface {
	IsInstalled(ctx context.Context, name string) (bool, error)
	Install(ctx context.Context, name string) (string, error)
	InstallFile(ctx context.Context, path string, forceDeps bool) (string, error)
}

// ConfigStore is the narrow contract to the system configuration store
// (UCI). Keys are dotted paths (config.section or config.section.option).
// Mutations are staged until Commit.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, pattern string) ([]string, error)
	Commit(ctx context.Context) error
}

// Fetcher downloads a URL to a local path.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// Prompter supplies the interactive decisions the reconciler needs. The
// Defaults implementation answers without a terminal, so reconciliation
// logic itself never touches stdin.
type Prompter interface {
	Ask(prompt, def string) (string, error)
	Confirm(prompt string, def bool) (bool, error)
	ResolveConflict(kind Kind, name string) (ConflictResolution, error)
}

package core

import (
	"context"
	"io"
	"os"
)

// SystemContext holds the runtime context of the target system being
// provisioned. It wraps the standard Go "context" package and adds the
// fields wrtprov needs to pick package variants and evaluate conditions.
type SystemContext struct {
	context.Context `yaml:"-"`

	// Operating System Information
	OS       string `yaml:"os"`       // linux (routers only for now)
	Distro   string `yaml:"distro"`   // openwrt, immortalwrt
	Release  string `yaml:"release"`  // DISTRIB_RELEASE (23.05.3, SNAPSHOT)
	Hostname string `yaml:"hostname"` // Router hostname

	// Package naming inputs (DISTRIB_* from /etc/openwrt_release)
	Arch      string `yaml:"arch"`      // aarch64_cortex-a53, mipsel_24kc
	Target    string `yaml:"target"`    // ath79, ramips, mediatek
	Subtarget string `yaml:"subtarget"` // generic, mt7622
	Board     string `yaml:"board"`     // DISTRIB_DESCRIPTION board hint

	// PkgManager is the detected package manager command: opkg or apk.
	PkgManager string `yaml:"pkg_manager"`

	// Transport Layer (Local or Remote)
	Transport Transport `yaml:"-"`

	// Execution Mode
	DryRun bool `yaml:"-"` // If true, nothing is changed, only simulated.

	Stdout io.Writer `yaml:"-"`
	Stderr io.Writer `yaml:"-"`
}

func NewSystemContext(dryRun bool) *SystemContext {
	return &SystemContext{
		Context:   context.Background(),
		OS:        "unknown",
		Distro:    "unknown",
		DryRun:    dryRun,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Transport: &LocalTransport{},
		// Remaining fields start zero-valued and are filled by system.Detect.
	}
}

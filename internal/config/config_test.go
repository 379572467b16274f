package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/melih-ucgun/wrtprov/internal/core"
	"github.com/melih-ucgun/wrtprov/internal/crypto"
	"github.com/melih-ucgun/wrtprov/internal/reconcile"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wrtprov.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("AWG_ENDPOINT", "vpn.example.com")

	path := writeManifest(t, `
vars:
  mirror: https://mirror.example/releases
on_failure: abort
hosts:
  - name: router
    address: 192.168.1.1
    user: root
resources:
  - kind: package
    name: kmod-amneziawg
    sources:
      - method: repository
      - method: download
        base_url: ${mirror}
  - kind: interface
    name: awg0
    properties:
      proto: amneziawg
      endpoint_host: ${AWG_ENDPOINT}
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Policy() != reconcile.PolicyAbort {
		t.Errorf("policy = %s, want abort", m.Policy())
	}
	if _, ok := m.FindHost("router"); !ok {
		t.Error("host router not found")
	}
	if m.Resources[0].Sources[1].BaseURL != "https://mirror.example/releases" {
		t.Errorf("var not expanded: %q", m.Resources[0].Sources[1].BaseURL)
	}
	if m.Resources[1].Properties["endpoint_host"] != "vpn.example.com" {
		t.Errorf("env var not expanded: %q", m.Resources[1].Properties["endpoint_host"])
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{
			name: "Package without sources",
			manifest: `
resources:
  - kind: package
    name: kmod-amneziawg
`,
		},
		{
			name: "Unknown kind",
			manifest: `
resources:
  - kind: cronjob
    name: x
`,
		},
		{
			name: "Unknown source method",
			manifest: `
resources:
  - kind: package
    name: x
    sources:
      - method: teleport
`,
		},
		{
			name: "Download source without url",
			manifest: `
resources:
  - kind: package
    name: x
    sources:
      - method: download
`,
		},
		{
			name: "Sources on an interface",
			manifest: `
resources:
  - kind: interface
    name: awg0
    sources:
      - method: repository
`,
		},
		{
			name: "Bad on_failure",
			manifest: `
on_failure: explode
resources: []
`,
		},
		{
			name: "Nameless resource",
			manifest: `
resources:
  - kind: package
    sources:
      - method: repository
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeManifest(t, tt.manifest)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSpecs_WhenCondition(t *testing.T) {
	path := writeManifest(t, `
resources:
  - kind: package
    name: luci-proto-amneziawg
    when: PkgManager == "opkg"
    sources:
      - method: repository
  - kind: package
    name: amneziawg-tools
    sources:
      - method: repository
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sys := core.NewSystemContext(true)
	sys.PkgManager = "apk"

	specs, skipped, err := m.Specs(sys)
	if err != nil {
		t.Fatalf("Specs failed: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "amneziawg-tools" {
		t.Errorf("unexpected specs: %+v", specs)
	}
	if len(skipped) != 1 || skipped[0] != "luci-proto-amneziawg" {
		t.Errorf("unexpected skipped: %v", skipped)
	}
}

func TestLoad_DecryptsProperties(t *testing.T) {
	t.Setenv("WRTPROV_MASTER_KEY", "test-master-key")

	sealed, err := crypto.Encrypt("wJ3pK-private-key=", "test-master-key")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	path := writeManifest(t, `
resources:
  - kind: interface
    name: awg0
    properties:
      proto: amneziawg
      private_key: "`+sealed+`"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := m.Resources[0].Properties["private_key"]; got != "wJ3pK-private-key=" {
		t.Errorf("private_key = %q, want decrypted plaintext", got)
	}
}

func TestLoad_MissingMasterKey(t *testing.T) {
	t.Setenv("WRTPROV_MASTER_KEY", "")
	t.Setenv("HOME", t.TempDir()) // no ~/.wrtprov/master.key either

	sealed, err := crypto.Encrypt("secret", "some-key")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	path := writeManifest(t, `
resources:
  - kind: interface
    name: awg0
    properties:
      private_key: "`+sealed+`"
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error when no master key is available")
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/melih-ucgun/wrtprov/internal/core"
	"github.com/melih-ucgun/wrtprov/internal/crypto"
	"github.com/melih-ucgun/wrtprov/internal/reconcile"
)

// Manifest is the root structure of wrtprov.yaml.
type Manifest struct {
	Vars      map[string]string `yaml:"vars"`       // Global variables
	OnFailure string            `yaml:"on_failure"` // continue (default) | abort
	Hosts     []Host            `yaml:"hosts"`      // Remote routers (optional)
	Resources []ResourceConfig  `yaml:"resources"`  // Declared resources, applied in order
}

// ResourceConfig declares one resource in the manifest.
type ResourceConfig struct {
	Kind       string            `yaml:"kind"`  // package, interface, zone, forwarding
	Name       string            `yaml:"name"`
	When       string            `yaml:"when"`  // Conditional execution logic
	Properties map[string]string `yaml:"properties"`
	Sources    []SourceConfig    `yaml:"sources"`
}

// SourceConfig is one ordered acquisition candidate for a package.
type SourceConfig struct {
	Method  string `yaml:"method"` // repository, download, forced
	URL     string `yaml:"url"`
	BaseURL string `yaml:"base_url"`
}

// Host holds connection information for a remote router.
type Host struct {
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	User       string `yaml:"user"`
	Port       int    `yaml:"port"`
	SSHKeyPath string `yaml:"ssh_key_path"`
	Password   string `yaml:"password"` // Recommended to come from env or an encrypted value
}

// Load reads the manifest at path, expands environment variables and
// decrypts encrypted values. A .env next to the manifest (or in the working
// directory) is loaded first so expansion sees it.
func Load(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	envPath := filepath.Join(filepath.Dir(absPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if loadErr := godotenv.Load(envPath); loadErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", loadErr)
		}
	} else {
		_ = godotenv.Load() // working directory fallback, absence is fine
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("file read error (%s): %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("yaml parse error (%s): %w", path, err)
	}

	expand(&m)
	if err := decrypt(&m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest before any reconciliation starts, so a bad
// declaration never aborts a half-applied run.
func (m *Manifest) Validate() error {
	switch m.OnFailure {
	case "", string(reconcile.PolicyContinue), string(reconcile.PolicyAbort):
	default:
		return fmt.Errorf("on_failure must be %q or %q, got %q",
			reconcile.PolicyContinue, reconcile.PolicyAbort, m.OnFailure)
	}

	for i, res := range m.Resources {
		if res.Name == "" {
			return fmt.Errorf("resource #%d has no name", i+1)
		}
		kind := reconcile.Kind(res.Kind)
		switch kind {
		case reconcile.KindPackage:
			if len(res.Sources) == 0 {
				return fmt.Errorf("package %s declares no sources", res.Name)
			}
			for _, src := range res.Sources {
				switch reconcile.Method(src.Method) {
				case reconcile.MethodRepository:
				case reconcile.MethodDownload, reconcile.MethodForced:
					if src.URL == "" && src.BaseURL == "" {
						return fmt.Errorf("package %s: %s source needs url or base_url",
							res.Name, src.Method)
					}
				default:
					return fmt.Errorf("package %s: unknown source method %q", res.Name, src.Method)
				}
			}
		case reconcile.KindNetworkInterface, reconcile.KindFirewallZone, reconcile.KindForwardingRule:
			if len(res.Sources) > 0 {
				return fmt.Errorf("%s %s: sources are only valid for packages", res.Kind, res.Name)
			}
		default:
			return fmt.Errorf("resource %s has unknown kind %q", res.Name, res.Kind)
		}
	}
	return nil
}

// Policy returns the failure policy, defaulting to continue: a router
// manifest lists mostly independent resources, and one broken feed should
// not block the rest. Systemic problems abort regardless.
func (m *Manifest) Policy() reconcile.FailurePolicy {
	if m.OnFailure == string(reconcile.PolicyAbort) {
		return reconcile.PolicyAbort
	}
	return reconcile.PolicyContinue
}

// FindHost looks a host up by name.
func (m *Manifest) FindHost(name string) (*Host, bool) {
	for i := range m.Hosts {
		if m.Hosts[i].Name == name {
			return &m.Hosts[i], true
		}
	}
	return nil, false
}

// Specs converts the declared resources into reconciler specs, evaluating
// each `when` condition against the detected system. Resources whose
// condition does not hold are returned in skipped.
func (m *Manifest) Specs(sys *core.SystemContext) (specs []reconcile.ResourceSpec, skipped []string, err error) {
	for _, res := range m.Resources {
		ok, cerr := core.EvaluateCondition(res.When, sys)
		if cerr != nil {
			return nil, nil, fmt.Errorf("resource %s: %w", res.Name, cerr)
		}
		if !ok {
			skipped = append(skipped, res.Name)
			continue
		}

		spec := reconcile.ResourceSpec{
			Kind:       reconcile.Kind(res.Kind),
			Name:       res.Name,
			Properties: res.Properties,
		}
		for _, src := range res.Sources {
			spec.Sources = append(spec.Sources, reconcile.Candidate{
				Method:  reconcile.Method(src.Method),
				URL:     src.URL,
				BaseURL: src.BaseURL,
			})
		}
		specs = append(specs, spec)
	}
	return specs, skipped, nil
}

// expand performs env var substitution on all string values.
func expand(m *Manifest) {
	for k, v := range m.Vars {
		expanded := os.ExpandEnv(v)
		m.Vars[k] = expanded
		// Exported so later values and resources can reference them.
		os.Setenv(k, expanded)
	}

	for i := range m.Resources {
		res := &m.Resources[i]
		res.Name = os.ExpandEnv(res.Name)
		for k, v := range res.Properties {
			res.Properties[k] = os.ExpandEnv(v)
		}
		for j := range res.Sources {
			res.Sources[j].URL = os.ExpandEnv(res.Sources[j].URL)
			res.Sources[j].BaseURL = os.ExpandEnv(res.Sources[j].BaseURL)
		}
	}

	for i := range m.Hosts {
		m.Hosts[i].Address = os.ExpandEnv(m.Hosts[i].Address)
		m.Hosts[i].User = os.ExpandEnv(m.Hosts[i].User)
		m.Hosts[i].Password = os.ExpandEnv(m.Hosts[i].Password)
		m.Hosts[i].SSHKeyPath = os.ExpandEnv(m.Hosts[i].SSHKeyPath)
	}
}

// decrypt resolves encrypted property and password values. The master key
// is only requested when an encrypted value is actually present.
func decrypt(m *Manifest) error {
	if !hasEncrypted(m) {
		return nil
	}

	key := masterKey()
	if key == "" {
		return fmt.Errorf("manifest has encrypted values but no master key is available")
	}

	for i := range m.Resources {
		for k, v := range m.Resources[i].Properties {
			if crypto.IsEncrypted(v) {
				plain, err := crypto.Decrypt(v, key)
				if err != nil {
					return fmt.Errorf("property %s of %s: %w", k, m.Resources[i].Name, err)
				}
				m.Resources[i].Properties[k] = plain
			}
		}
	}
	for i := range m.Hosts {
		if crypto.IsEncrypted(m.Hosts[i].Password) {
			plain, err := crypto.Decrypt(m.Hosts[i].Password, key)
			if err != nil {
				return fmt.Errorf("password of host %s: %w", m.Hosts[i].Name, err)
			}
			m.Hosts[i].Password = plain
		}
	}
	return nil
}

func hasEncrypted(m *Manifest) bool {
	for _, res := range m.Resources {
		for _, v := range res.Properties {
			if crypto.IsEncrypted(v) {
				return true
			}
		}
	}
	for _, h := range m.Hosts {
		if crypto.IsEncrypted(h.Password) {
			return true
		}
	}
	return false
}

func masterKey() string {
	// 1. Env Var
	if key := os.Getenv("WRTPROV_MASTER_KEY"); key != "" {
		return key
	}

	// 2. File (~/.wrtprov/master.key)
	if home, err := os.UserHomeDir(); err == nil {
		keyPath := filepath.Join(home, ".wrtprov", "master.key")
		if content, err := os.ReadFile(keyPath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	// 3. Interactive prompt, only when stdin is a terminal
	if isInteractive() {
		pterm.Println()
		pterm.Warning.Println("Encrypted values detected but WRTPROV_MASTER_KEY not found.")
		key, err := pterm.DefaultInteractiveTextInput.
			WithMask("*").
			Show("Enter master key for decryption")
		if err == nil && key != "" {
			return key
		}
	}

	return ""
}

func isInteractive() bool {
	fileInfo, _ := os.Stdin.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Package uci implements the reconcile.ConfigStore contract on top of the
// OpenWrt uci command line, reached through a core.Transport.
package uci

import (
	"context"
	"fmt"
	"strings"

	"github.com/melih-ucgun/wrtprov/internal/core"
)

// Store stages mutations with uci set/delete and flushes them with a single
// uci commit, matching the batch semantics uci itself provides.
type Store struct {
	Transport core.Transport

	// dirty holds the config names (network, firewall) touched since the
	// last commit, so Commit only flushes what changed.
	dirty map[string]bool
}

func NewStore(t core.Transport) *Store {
	return &Store{Transport: t, dirty: make(map[string]bool)}
}

// Get reads a key. A missing section or option reports (_, false, nil);
// uci exits non-zero with "Entry not found" for those.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.Transport.Execute(ctx, "uci get "+shellQuote(key))
	if err != nil {
		if strings.Contains(out, "Entry not found") {
			return "", false, nil
		}
		return "", false, fmt.Errorf("uci get %s: %s", key, strings.TrimSpace(out))
	}
	return strings.TrimSpace(out), true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	out, err := s.Transport.Execute(ctx,
		fmt.Sprintf("uci set %s=%s", shellQuote(key), shellQuote(value)))
	if err != nil {
		return fmt.Errorf("uci set %s: %s", key, strings.TrimSpace(out))
	}
	s.markDirty(key)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	out, err := s.Transport.Execute(ctx, "uci delete "+shellQuote(key))
	if err != nil {
		// Deleting a vanished entry is not a failure.
		if strings.Contains(out, "Entry not found") {
			return nil
		}
		return fmt.Errorf("uci delete %s: %s", key, strings.TrimSpace(out))
	}
	s.markDirty(key)
	return nil
}

// ListKeys returns the section keys matching pattern. Two pattern forms are
// understood: "config.prefix" matches named sections by prefix, and
// "config.@type" matches all sections of the given type, which is how the
// amneziawg peer sections bound to an interface are found.
func (s *Store) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	config, rest, ok := strings.Cut(pattern, ".")
	if !ok {
		return nil, fmt.Errorf("uci pattern %q: want config.prefix or config.@type", pattern)
	}

	out, err := s.Transport.Execute(ctx, "uci show "+shellQuote(config))
	if err != nil {
		return nil, fmt.Errorf("uci show %s: %s", config, strings.TrimSpace(out))
	}

	var keys []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		// Section lines look like "network.awg0=interface" or
		// "network.cfg0a3c9d=amneziawg_awg0".
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key, value := line[:eq], line[eq+1:]
		if strings.Count(key, ".") != 1 || seen[key] {
			continue
		}

		if typ, isType := strings.CutPrefix(rest, "@"); isType {
			if value == typ {
				seen[key] = true
				keys = append(keys, key)
			}
			continue
		}
		if strings.HasPrefix(key, config+"."+rest) {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Commit durably flushes every staged mutation. An error here means the
// store is unwritable, which callers treat as fatal to the whole run.
func (s *Store) Commit(ctx context.Context) error {
	for config := range s.dirty {
		out, err := s.Transport.Execute(ctx, "uci commit "+shellQuote(config))
		if err != nil {
			return fmt.Errorf("uci commit %s: %s", config, strings.TrimSpace(out))
		}
		delete(s.dirty, config)
	}
	return nil
}

func (s *Store) markDirty(key string) {
	if s.dirty == nil {
		s.dirty = make(map[string]bool)
	}
	if config, _, ok := strings.Cut(key, "."); ok {
		s.dirty[config] = true
	} else {
		s.dirty[key] = true
	}
}

func shellQuote(v string) string {
	return "'" + v + "'"
}

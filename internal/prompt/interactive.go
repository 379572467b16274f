// Package prompt provides the Prompter implementations: a pterm-backed
// interactive one and a defaults-only one for unattended runs.
package prompt

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/melih-ucgun/wrtprov/internal/reconcile"
)

// Interactive asks on the controlling terminal via pterm.
type Interactive struct{}

func NewInteractive() *Interactive {
	return &Interactive{}
}

func (p *Interactive) Ask(prompt, def string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultValue(def).
		Show(prompt)
}

func (p *Interactive) Confirm(prompt string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(prompt)
}

func (p *Interactive) ResolveConflict(kind reconcile.Kind, name string) (reconcile.ConflictResolution, error) {
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions([]string{
			string(reconcile.ResolutionSkip),
			string(reconcile.ResolutionOverwrite),
			string(reconcile.ResolutionRename),
		}).
		Show(fmt.Sprintf("%s %q already exists with different settings", kind, name))
	if err != nil {
		return "", err
	}
	return reconcile.ConflictResolution(choice), nil
}

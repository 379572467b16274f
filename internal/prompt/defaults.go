package prompt

import "github.com/melih-ucgun/wrtprov/internal/reconcile"

// Defaults answers every prompt with its default and never touches the
// terminal. Conflicts resolve to Skip and destructive escalations are
// declined, so an unattended run can never overwrite or force anything.
type Defaults struct{}

func NewDefaults() *Defaults {
	return &Defaults{}
}

func (p *Defaults) Ask(prompt, def string) (string, error) {
	return def, nil
}

func (p *Defaults) Confirm(prompt string, def bool) (bool, error) {
	return def, nil
}

func (p *Defaults) ResolveConflict(kind reconcile.Kind, name string) (reconcile.ConflictResolution, error) {
	return reconcile.ResolutionSkip, nil
}

package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/melih-ucgun/wrtprov/internal/core"
)

func TestRunner_PolicyContinue(t *testing.T) {
	pkg := &mockPkg{
		Installed:   map[string]bool{"amneziawg-tools": true},
		InstallDiag: "opkg: cannot find package",
		InstallErr:  errors.New("exit status 255"),
	}
	r := newTestReconciler(t, pkg, newMockStore(), &mockFetch{}, &mockPrompt{})

	specs := []ResourceSpec{
		{Kind: KindPackage, Name: "kmod-amneziawg", Sources: []Candidate{{Method: MethodRepository}}},
		{Kind: KindPackage, Name: "amneziawg-tools", Sources: []Candidate{{Method: MethodRepository}}},
	}

	var streamed []Outcome
	runner := &Runner{
		Reconciler: r,
		Policy:     PolicyContinue,
		OnOutcome:  func(o Outcome) { streamed = append(streamed, o) },
	}

	rep, err := runner.Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(rep.Outcomes))
	}
	if rep.Outcomes[0].FinalState != StateFailed {
		t.Errorf("expected first failed, got %s", rep.Outcomes[0].FinalState)
	}
	if rep.Outcomes[1].FinalState != StateAlreadyPresent {
		t.Errorf("run did not continue past the failure: %s", rep.Outcomes[1].FinalState)
	}
	if len(streamed) != 2 {
		t.Errorf("OnOutcome streamed %d outcomes, want 2", len(streamed))
	}
	if !rep.Failed() || rep.Count(StateFailed) != 1 {
		t.Error("report does not reflect the failure")
	}
}

func TestRunner_PolicyAbort(t *testing.T) {
	pkg := &mockPkg{
		Installed:  map[string]bool{},
		InstallErr: errors.New("exit status 255"),
	}
	r := newTestReconciler(t, pkg, newMockStore(), &mockFetch{}, &mockPrompt{})

	specs := []ResourceSpec{
		{Kind: KindPackage, Name: "kmod-amneziawg", Sources: []Candidate{{Method: MethodRepository}}},
		{Kind: KindPackage, Name: "amneziawg-tools", Sources: []Candidate{{Method: MethodRepository}}},
	}

	runner := &Runner{Reconciler: r, Policy: PolicyAbort}
	rep, err := runner.Run(context.Background(), specs)
	if err == nil {
		t.Fatal("expected abort error")
	}
	if len(rep.Outcomes) != 1 {
		t.Errorf("expected processing to stop after the failure, got %d outcomes", len(rep.Outcomes))
	}
	if len(pkg.InstallCalls) != 1 {
		t.Errorf("second resource was still attempted: %v", pkg.InstallCalls)
	}
}

func TestReconcilePackage_FilenameFromSystemContext(t *testing.T) {
	pkg := &mockPkg{Installed: map[string]bool{}}
	fetch := &mockFetch{}
	r := newTestReconciler(t, pkg, newMockStore(), fetch, &mockPrompt{})
	r.Sys = &core.SystemContext{
		Arch:      "aarch64_cortex-a53",
		Target:    "mediatek",
		Subtarget: "mt7622",
		Release:   "23.05.3",
	}

	outcome, err := r.Reconcile(context.Background(), ResourceSpec{
		Kind: KindPackage,
		Name: "kmod-amneziawg",
		Sources: []Candidate{
			{Method: MethodDownload, BaseURL: "https://mirror.example/releases"},
		},
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if outcome.FinalState != StateInstalled {
		t.Fatalf("expected installed, got %s (%s)", outcome.FinalState, outcome.ErrorDetail)
	}

	want := "https://mirror.example/releases/v23.05.3/kmod-amneziawg-v1.5_aarch64_cortex-a53_mediatek_mt7622.ipk"
	if len(fetch.Calls) != 1 || fetch.Calls[0] != want {
		t.Errorf("built url %v, want %s", fetch.Calls, want)
	}
}

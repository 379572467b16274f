package core

import "testing"

func TestEvaluateCondition(t *testing.T) {
	ctx := NewSystemContext(true)
	ctx.Distro = "openwrt"
	ctx.Release = "23.05.3"
	ctx.Target = "ramips"
	ctx.PkgManager = "opkg"

	tests := []struct {
		name      string
		condition string
		want      bool
		wantErr   bool
	}{
		{"Empty condition is true", "", true, false},
		{"Matching distro", `Distro == "openwrt"`, true, false},
		{"Non-matching target", `Target == "ath79"`, false, false},
		{"Compound expression", `PkgManager == "opkg" && Release startsWith "23."`, true, false},
		{"Invalid syntax", `Distro ==`, false, true},
		{"Non-boolean result", `Release`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.condition, ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("EvaluateCondition failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

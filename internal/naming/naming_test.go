package naming

import "testing"

func TestProtocolVariant(t *testing.T) {
	tests := []struct {
		release string
		want    string
	}{
		{"22.03.5", "v1"},
		{"21.02.0", "v1"},
		{"23.05.0", "v1.5"},
		{"23.05.3", "v1.5"},
		{"24.10.1", "v1.5"},
		{"SNAPSHOT", "v1.5"},
		{"garbage", "v1"}, // unparseable stays on the safe side
	}
	for _, tt := range tests {
		if got := ProtocolVariant(tt.release); got != tt.want {
			t.Errorf("ProtocolVariant(%q) = %q, want %q", tt.release, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		release string
		want    string
	}{
		{"23.05.3", ".ipk"},
		{"22.03.5", ".ipk"},
		{"24.10.0", ".apk"},
		{"24.10.1", ".apk"},
		{"SNAPSHOT", ".apk"},
	}
	for _, tt := range tests {
		if got := Extension(tt.release); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.release, got, tt.want)
		}
	}
}

func TestPackageFilename(t *testing.T) {
	tests := []struct {
		name      string
		pkg       string
		arch      string
		target    string
		subtarget string
		release   string
		want      string
		wantErr   bool
	}{
		{
			name:    "amneziawg kernel module on 23.05",
			pkg:     "kmod-amneziawg",
			arch:    "aarch64_cortex-a53",
			target:  "mediatek",
			subtarget: "mt7622",
			release: "23.05.3",
			want:    "kmod-amneziawg-v1.5_aarch64_cortex-a53_mediatek_mt7622.ipk",
		},
		{
			name:    "old release gets v1 build",
			pkg:     "amneziawg-tools",
			arch:    "mipsel_24kc",
			target:  "ramips",
			subtarget: "mt7621",
			release: "22.03.5",
			want:    "amneziawg-tools-v1_mipsel_24kc_ramips_mt7621.ipk",
		},
		{
			name:    "apk era release",
			pkg:     "luci-proto-amneziawg",
			arch:    "x86_64",
			target:  "x86",
			subtarget: "64",
			release: "24.10.0",
			want:    "luci-proto-amneziawg-v1.5_x86_64_x86_64.apk",
		},
		{
			name:    "non-amneziawg package has no variant token",
			pkg:     "curl",
			arch:    "aarch64_cortex-a53",
			target:  "mediatek",
			subtarget: "mt7622",
			release: "23.05.3",
			want:    "curl_aarch64_cortex-a53_mediatek_mt7622.ipk",
		},
		{
			name:    "empty subtarget defaults to generic",
			pkg:     "kmod-amneziawg",
			arch:    "mips_24kc",
			target:  "ath79",
			release: "23.05.3",
			want:    "kmod-amneziawg-v1.5_mips_24kc_ath79_generic.ipk",
		},
		{
			name:    "missing arch is an error",
			pkg:     "kmod-amneziawg",
			target:  "ath79",
			release: "23.05.3",
			wantErr: true,
		},
		{
			name:    "missing package name is an error",
			arch:    "mips_24kc",
			target:  "ath79",
			release: "23.05.3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PackageFilename(tt.pkg, tt.arch, tt.target, tt.subtarget, tt.release)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("PackageFilename failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloadURL(t *testing.T) {
	got := DownloadURL("https://mirror.example/releases/", "kmod-amneziawg-v1.5_x.ipk", "23.05.3")
	want := "https://mirror.example/releases/v23.05.3/kmod-amneziawg-v1.5_x.ipk"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = DownloadURL("https://mirror.example/releases", "kmod-amneziawg-v1.5_x.apk", "SNAPSHOT")
	want = "https://mirror.example/releases/snapshot/kmod-amneziawg-v1.5_x.apk"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if DownloadURL("", "f.ipk", "23.05.3") != "" {
		t.Error("empty base must yield empty url")
	}
}

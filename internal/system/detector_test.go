package system

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/melih-ucgun/wrtprov/internal/core"
)

type fakeTransport struct {
	Outputs map[string]string
}

func (f *fakeTransport) Execute(ctx context.Context, cmd string) (string, error) {
	for prefix, out := range f.Outputs {
		if strings.HasPrefix(cmd, prefix) {
			return out, nil
		}
	}
	return "", errors.New("exit status 1")
}

func (f *fakeTransport) CopyFile(ctx context.Context, local, remote string) error { return nil }
func (f *fakeTransport) Close() error                                             { return nil }

const openwrtRelease = `DISTRIB_ID='OpenWrt'
DISTRIB_RELEASE='23.05.3'
DISTRIB_REVISION='r23809-234f1a2efa'
DISTRIB_TARGET='mediatek/mt7622'
DISTRIB_ARCH='aarch64_cortex-a53'
DISTRIB_DESCRIPTION='OpenWrt 23.05.3 r23809-234f1a2efa'
`

func TestDetect_OpenWrt(t *testing.T) {
	ctx := core.NewSystemContext(true)
	ctx.Transport = &fakeTransport{Outputs: map[string]string{
		"cat /etc/openwrt_release": openwrtRelease,
		"hostname":                 "router\n",
		"command -v opkg":          "/bin/opkg\n",
	}}

	Detect(ctx)

	if ctx.Distro != "openwrt" {
		t.Errorf("Distro = %q", ctx.Distro)
	}
	if ctx.Release != "23.05.3" {
		t.Errorf("Release = %q", ctx.Release)
	}
	if ctx.Arch != "aarch64_cortex-a53" {
		t.Errorf("Arch = %q", ctx.Arch)
	}
	if ctx.Target != "mediatek" || ctx.Subtarget != "mt7622" {
		t.Errorf("Target = %q/%q", ctx.Target, ctx.Subtarget)
	}
	if ctx.Hostname != "router" {
		t.Errorf("Hostname = %q", ctx.Hostname)
	}
	if ctx.PkgManager != "opkg" {
		t.Errorf("PkgManager = %q", ctx.PkgManager)
	}
}

func TestDetect_OSReleaseFallback(t *testing.T) {
	ctx := core.NewSystemContext(true)
	ctx.Transport = &fakeTransport{Outputs: map[string]string{
		"cat /etc/os-release": "ID=alpine\nVERSION_ID=3.20.1\n",
		"command -v apk":      "/sbin/apk\n",
	}}

	Detect(ctx)

	if ctx.Distro != "alpine" {
		t.Errorf("Distro = %q", ctx.Distro)
	}
	if ctx.Release != "3.20.1" {
		t.Errorf("Release = %q", ctx.Release)
	}
	if ctx.PkgManager != "apk" {
		t.Errorf("PkgManager = %q", ctx.PkgManager)
	}
}

func TestParseKeyValues(t *testing.T) {
	info := parseKeyValues("A='1'\n# comment\nB=\"two\"\nbroken line\nC=3\n")
	if info["A"] != "1" || info["B"] != "two" || info["C"] != "3" {
		t.Errorf("unexpected parse: %v", info)
	}
	if _, ok := info["broken line"]; ok {
		t.Error("broken line should be ignored")
	}
}

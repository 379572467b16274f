package system

import (
	"runtime"
	"strings"

	"github.com/melih-ucgun/wrtprov/internal/core"
)

// Detect analyses the target system and fills the SystemContext. All reads
// go through the context's Transport, so the same code detects the local
// box or a router at the far end of an SSH session.
func Detect(ctx *core.SystemContext) {
	execCmd := func(cmdStr string) (string, error) {
		return ctx.Transport.Execute(ctx.Context, cmdStr)
	}

	ctx.OS = runtime.GOOS

	// 1. OpenWrt release metadata. DISTRIB_TARGET holds "target/subtarget".
	if out, err := execCmd("cat /etc/openwrt_release"); err == nil {
		info := parseKeyValues(out)
		ctx.Distro = strings.ToLower(info["DISTRIB_ID"])
		ctx.Release = info["DISTRIB_RELEASE"]
		ctx.Arch = info["DISTRIB_ARCH"]
		ctx.Board = info["DISTRIB_DESCRIPTION"]
		if target, subtarget, ok := strings.Cut(info["DISTRIB_TARGET"], "/"); ok {
			ctx.Target = target
			ctx.Subtarget = subtarget
		} else {
			ctx.Target = info["DISTRIB_TARGET"]
		}
	} else if out, err := execCmd("cat /etc/os-release"); err == nil {
		// Non-OpenWrt fallback, enough for condition expressions.
		info := parseKeyValues(out)
		ctx.Distro = strings.ToLower(info["ID"])
		ctx.Release = info["VERSION_ID"]
	}

	if hostname, err := execCmd("hostname"); err == nil {
		ctx.Hostname = strings.TrimSpace(hostname)
	}

	// 2. Package manager probe. Release strings lie on community builds,
	// so trust the filesystem.
	switch {
	case core.IsCommandAvailable(ctx, ctx.Transport, "opkg"):
		ctx.PkgManager = "opkg"
	case core.IsCommandAvailable(ctx, ctx.Transport, "apk"):
		ctx.PkgManager = "apk"
	}
}

// parseKeyValues parses the KEY='value' lines of openwrt_release and
// os-release files.
func parseKeyValues(out string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `'"`)
		info[key] = value
	}
	return info
}

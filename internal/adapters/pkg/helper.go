package pkg

import (
	"fmt"

	"github.com/melih-ucgun/wrtprov/internal/core"
	"github.com/melih-ucgun/wrtprov/internal/reconcile"
)

// Detect returns the package manager adapter for the target system.
// OpenWrt images ship opkg up to 23.05 and apk from 24.10 on; we probe for
// the actual command instead of trusting the release string, since snapshot
// and community builds mix the two.
func Detect(ctx *core.SystemContext) (reconcile.PackageManager, error) {
	if ctx.PkgManager == "opkg" {
		return NewOpkg(ctx.Transport), nil
	}
	if ctx.PkgManager == "apk" {
		return NewApk(ctx.Transport), nil
	}

	if core.IsCommandAvailable(ctx, ctx.Transport, "opkg") {
		ctx.PkgManager = "opkg"
		return NewOpkg(ctx.Transport), nil
	}
	if core.IsCommandAvailable(ctx, ctx.Transport, "apk") {
		ctx.PkgManager = "apk"
		return NewApk(ctx.Transport), nil
	}

	return nil, fmt.Errorf("no supported package manager found (tried opkg, apk)")
}

// stagePath is where package files are placed on the target before a local
// install. Kept on tmpfs so a failed install leaves nothing on flash.
func stagePath(base string) string {
	return "/tmp/" + base
}

func shellQuote(s string) string {
	return "'" + s + "'"
}

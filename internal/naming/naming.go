// Package naming builds package filenames and download URLs from the
// DISTRIB_* tokens of the target system. The conventions here mirror the
// per-release artifact layout of the amneziawg-openwrt package feeds, so
// every edge case (snapshot builds, the protocol variant threshold, the
// opkg to apk handover) lives in one unit-testable place.
package naming

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SnapshotRelease is the DISTRIB_RELEASE value of untagged builds. It is
// treated as newer than any tagged release.
const SnapshotRelease = "SNAPSHOT"

// apkThreshold is the first release whose images ship apk instead of opkg.
var apkThreshold = semver.MustParse("24.10.0")

// variantThreshold is the first release whose amneziawg packages are built
// with protocol 1.5 obfuscation; older releases only have the v1 build.
var variantThreshold = semver.MustParse("23.05.0")

// ReleaseAtLeast reports whether release is the given version or newer.
// SNAPSHOT always satisfies the threshold.
func ReleaseAtLeast(release, threshold string) (bool, error) {
	if strings.EqualFold(release, SnapshotRelease) {
		return true, nil
	}
	rel, err := semver.NewVersion(release)
	if err != nil {
		return false, fmt.Errorf("unparseable release %q: %w", release, err)
	}
	min, err := semver.NewVersion(threshold)
	if err != nil {
		return false, fmt.Errorf("unparseable threshold %q: %w", threshold, err)
	}
	return !rel.LessThan(min), nil
}

// Extension returns the package file extension the release's package
// manager expects.
func Extension(release string) string {
	ok, err := ReleaseAtLeast(release, apkThreshold.String())
	if err == nil && ok {
		return ".apk"
	}
	return ".ipk"
}

// ProtocolVariant returns the amneziawg protocol generation packaged for
// the given release: "v1" below the threshold, "v1.5" at or above it.
func ProtocolVariant(release string) string {
	ok, err := ReleaseAtLeast(release, variantThreshold.String())
	if err == nil && ok {
		return "v1.5"
	}
	return "v1"
}

// PackageFilename builds the artifact filename for pkg on the given system.
// Layout: <pkg>[-<variant>]_<arch>_<target>_<subtarget><ext>, where the
// variant token is only present for amneziawg packages and subtarget
// defaults to "generic".
func PackageFilename(pkg, arch, target, subtarget, release string) (string, error) {
	if pkg == "" {
		return "", fmt.Errorf("package name is required")
	}
	if arch == "" || target == "" {
		return "", fmt.Errorf("cannot name %s: architecture and target are not detected", pkg)
	}
	if subtarget == "" {
		subtarget = "generic"
	}

	name := pkg
	if isAmnezia(pkg) {
		name += "-" + ProtocolVariant(release)
	}

	return fmt.Sprintf("%s_%s_%s_%s%s", name, arch, target, subtarget, Extension(release)), nil
}

// DownloadURL joins a release base URL with the artifact filename. Tagged
// releases live under v<release>/, snapshots under snapshot/.
func DownloadURL(base, filename, release string) string {
	if base == "" || filename == "" {
		return ""
	}
	dir := "v" + release
	if strings.EqualFold(release, SnapshotRelease) {
		dir = "snapshot"
	}
	return strings.TrimRight(base, "/") + "/" + dir + "/" + filename
}

func isAmnezia(pkg string) bool {
	return strings.HasPrefix(pkg, "amneziawg-") || strings.HasPrefix(pkg, "kmod-amneziawg") ||
		strings.HasPrefix(pkg, "luci-app-amneziawg") || strings.HasPrefix(pkg, "luci-proto-amneziawg")
}

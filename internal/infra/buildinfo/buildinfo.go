// Package buildinfo reports the module versions compiled into the binary.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// SysKey holds the Go runtime version in Packages.
const SysKey = "sys"

var readBuildInfo = debug.ReadBuildInfo

// PackageVersion returns the version of module path as built, following
// replace directives. The main module is included.
func PackageVersion(path string) (string, bool) {
	v, ok := Packages()[path]
	return v, ok
}

// Packages maps every module in the binary to its version, plus SysKey to
// the Go runtime version. Without build info only SysKey is present.
func Packages() map[string]string {
	out := map[string]string{SysKey: runtime.Version()}

	info, ok := readBuildInfo()
	if !ok {
		return out
	}
	if info.Main.Path != "" {
		out[info.Main.Path] = info.Main.Version
	}
	for _, dep := range info.Deps {
		mod := dep
		if dep.Replace != nil {
			mod = dep.Replace
		}
		out[dep.Path] = mod.Version
	}
	return out
}

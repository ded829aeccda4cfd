// Package version exposes build identification set via -ldflags at release
// time, with a module-info fallback for go-install builds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3 -X .../internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "unknown"
)

// Info is the resolved build identification.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get resolves the build info, preferring ldflags values and falling back to
// the module build info embedded by the toolchain.
func Get() Info {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return Info{
		Version:   v,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the info on one line for CLI output.
func (i Info) String() string {
	return fmt.Sprintf("isleforge %s (%s) %s %s", i.Version, i.Commit, i.GoVersion, i.Platform)
}

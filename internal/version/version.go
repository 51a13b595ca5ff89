package version

import (
	"runtime"
	"runtime/debug"
	"slices"
)

var version = "dev"

// Version returns the current version string, with the VCS revision when
// the binary was built from a checkout.
func Version() string {
	if commit := GitCommit(); commit != "" && version == "dev" {
		return version + " (" + commit + ")"
	}
	return version
}

// RawVersion returns the semantic version string without any suffix.
func RawVersion() string {
	return version
}

// GitCommit returns the abbreviated VCS revision from build info.
func GitCommit() string {
	_, commit := readBuildInfo()
	return commit
}

// GoVersion returns the Go toolchain version used for the build.
func GoVersion() string {
	return runtime.Version()
}

// readBuildInfo reads debug.ReadBuildInfo and extracts the module version
// and the VCS revision.
func readBuildInfo() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	var modVersion, commit string
	if v := info.Main.Version; v != "" && v != "(devel)" {
		modVersion = v
	}
	if idx := slices.IndexFunc(info.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); idx >= 0 {
		val := info.Settings[idx].Value
		if len(val) > 12 {
			commit = val[:12]
		} else {
			commit = val
		}
	}
	return modVersion, commit
}

// Info holds structured version information for machine-readable output.
type Info struct {
	Version       string   `json:"version"`
	ModuleVersion string   `json:"moduleVersion,omitempty"`
	Platform      Platform `json:"platform"`
	GoVersion     string   `json:"goVersion"`
	GitCommit     string   `json:"gitCommit,omitempty"`
}

// Platform describes the OS and architecture.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	modVersion, commit := readBuildInfo()
	return Info{
		Version:       RawVersion(),
		ModuleVersion: modVersion,
		Platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		GoVersion: GoVersion(),
		GitCommit: commit,
	}
}

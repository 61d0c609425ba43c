package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X progdemo/pkg/config.BuildVersion=...".
var (
	BuildVersion   = ""
	BuildTimestamp = "unknown"
)

// Version is BuildVersion, or the module version recorded by
// "go install" when the binary was built without ldflags.
func Version() string {
	if BuildVersion != "" {
		return BuildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "unknown"
}

// GetBuildInfo returns a formatted string with build details.
func GetBuildInfo() string {
	return fmt.Sprintf("%s %s (%s) %s %s/%s", AppName, Version(), BuildTimestamp, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

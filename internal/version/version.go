package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Name of the application
	AppName = "OtaSync"

	// Version of the application
	Version = "0.1.0-dev"

	// Git commit hash of the application
	Revision = "HEAD"
)

func applyBuildInfo(mainVersion string, settings map[string]string) {
	// Prefer module version when set by release builds.
	if Version == "0.1.0-dev" || Version == "" {
		if v := mainVersion; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}

	// Prefer VCS revision for local/dev builds.
	if Revision == "HEAD" || Revision == "" {
		if r := settings["vcs.revision"]; r != "" {
			if settings["vcs.modified"] == "true" {
				r += "-dirty"
			}
			Revision = r
		}
	}
}

// resolveFromBuildInfo populates Version/Revision from Go build metadata
// when ldflags didn't provide real values.
func resolveFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return
	}

	settings := map[string]string{}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	applyBuildInfo(info.Main.Version, settings)
}

// Short returns a concise version string - `0.1.0 (5e23a4)`
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Revision)
}

// Detailed returns a detailed version string - `0.1.0 (5e23a4; go1.23.6; linux/amd64)`
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func init() {
	resolveFromBuildInfo()
}

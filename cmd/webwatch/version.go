package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata. Release builds inject all three via -ldflags; a plain
// go-build binary leaves them empty and the getters fall back to the build
// info the toolchain embeds on its own.
var (
	version = ""
	commit  = ""
	date    = ""
)

// getVersion resolves the version to display. The ldflags value wins, then
// the module version from the embedded build info, then "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit resolves the VCS revision, shortened to the seven characters git
// shows by default. A checkout with uncommitted changes gets a -dirty suffix.
func getCommit() string {
	if commit != "" {
		return commit
	}
	rev := buildSetting("vcs.revision")
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if buildSetting("vcs.modified") == "true" {
		rev += "-dirty"
	}
	return rev
}

// getDate resolves the commit timestamp the toolchain recorded at build time.
func getDate() string {
	if date != "" {
		return date
	}
	if ts := buildSetting("vcs.time"); ts != "" {
		return ts
	}
	return "unknown"
}

// buildSetting looks up one key in the binary's embedded build settings.
// Returns "" when the key or the build info itself is absent.
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the webwatch version and build details",
		Long:  `Show the running webwatch version and the commit it was built from.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "webwatch version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
		},
	}
}

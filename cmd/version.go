package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Version returns a `version` command to be added to any cobra (root) command.
func Version(name string) *cobra.Command {
	short := "Print version"
	if strings.TrimSpace(name) != "" {
		short = "Print " + name + " version"
	}

	return &cobra.Command{
		Use:                   "version",
		Short:                 short,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			hash, ts := versionHashAndTimestamp()

			prefix := ""
			if strings.TrimSpace(name) != "" {
				prefix = name + " "
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%sversion: %s from %s\n", prefix, hash, ts)
		},
	}
}

// versionHashAndTimestamp returns the git hash and commit time the binary is build from.
func versionHashAndTimestamp() (string, string) {
	hash, timestamp, modified := readBuildInfo()

	if modified || hash == "" {
		return "@latest", time.Now().UTC().Format(time.RFC3339)
	}

	return hash, timestamp
}

// readBuildInfo returns the commit hash, the commit time and if the binary contains uncommitted code.
// `go run` and `go test` do not record vcs settings.
func readBuildInfo() (string, string, bool) {
	var (
		hash     string
		ts       string
		modified bool
	)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return hash, ts, modified
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			hash = setting.Value
		case "vcs.time":
			ts = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	return hash, ts, modified
}

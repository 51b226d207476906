package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/jobo-ai/jobo-go/jobo"
)

// releaseRepository hosts the CLI release binaries
const releaseRepository = "jobo-ai/jobo-go"

var (
	version   = "dev"
	buildTime = "unknown"

	forceUpdate bool
)

// SetVersion records the build information injected through ldflags
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = v
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "jobo %s (built %s, %s/%s)\n", version, buildTime, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "client library %s\n", jobo.Version)
		if _, err := currentVersion(); err != nil {
			fmt.Fprintln(out, "development build, updates disabled")
		}
		return nil
	},
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update jobo to the latest release",
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&forceUpdate, "force", false, "update even from a development build")
}

// currentVersion parses the build version, accepting a leading "v"
func currentVersion() (semver.Version, error) {
	return semver.ParseTolerant(version)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	current, err := currentVersion()
	if err != nil {
		if !forceUpdate {
			return fmt.Errorf("cannot update development build %q (use --force)", version)
		}
		current = semver.Version{}
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	latestVersion, err := semver.ParseTolerant(latest.Version())
	if err != nil {
		return fmt.Errorf("invalid release version %q: %w", latest.Version(), err)
	}
	if !latestVersion.GT(current) {
		fmt.Fprintf(out, "✓ jobo %s is the latest version\n", version)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	fmt.Fprintf(out, "Updating jobo %s → %s...\n", version, latestVersion)
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(out, "✓ Updated to %s\n", latestVersion)
	return nil
}

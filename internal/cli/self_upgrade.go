//go:build !docker

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const releaseRepository = "seuros/posturai"

var (
	selfUpgradeRequested bool
	selfUpgradeCheckOnly bool
	selfUpgradeAutoYes   bool
)

// Swapped in tests.
var (
	detectLatest = selfupdate.DetectLatest
	updateTo     = selfupdate.UpdateTo
	exitFunc     = os.Exit
)

func setupSelfUpgrade() {
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeRequested, "self-upgrade", false, "Upgrade PosturAI to the latest release and exit")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeCheckOnly, "self-upgrade-check", false, "Only check whether a newer PosturAI release is available")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeAutoYes, "self-upgrade-yes", false, "Skip confirmation prompts when running --self-upgrade")

	existingPreRun := RootCmd.PersistentPreRunE
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if existingPreRun != nil {
			if err := existingPreRun(cmd, args); err != nil {
				return err
			}
		}

		return handleSelfUpgradeFlags(cmd)
	}
}

func handleSelfUpgradeFlags(cmd *cobra.Command) error {
	if !selfUpgradeRequested && !selfUpgradeCheckOnly {
		return nil
	}

	if err := runSelfUpgrade(cmd.OutOrStdout(), cmd.InOrStdin(), selfUpgradeCheckOnly, selfUpgradeAutoYes); err != nil {
		return err
	}

	exitFunc(0)
	return nil
}

func currentVersion() (semver.Version, error) {
	versionStr := strings.TrimSpace(strings.TrimPrefix(Version, "v"))
	if versionStr == "" {
		return semver.Version{}, errors.New("self-upgrade is only available for release builds")
	}
	current, err := semver.Parse(versionStr)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid current version %q: %w", Version, err)
	}
	return current, nil
}

func runSelfUpgrade(out io.Writer, in io.Reader, checkOnly, autoYes bool) error {
	current, err := currentVersion()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Checking current version... v%s\n", current)
	_, _ = fmt.Fprint(out, "Checking latest released version... ")
	latest, found, err := detectLatest(releaseRepository)
	if err != nil {
		_, _ = fmt.Fprintln(out)
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		_, _ = fmt.Fprintln(out)
		return errors.New("no releases found for PosturAI")
	}

	latestVer := latest.Version
	_, _ = fmt.Fprintf(out, "v%s\n", latestVer)

	if !latestVer.GT(current) {
		_, _ = fmt.Fprintln(out, "PosturAI is already up to date")
		return nil
	}

	_, _ = fmt.Fprintf(out, "New release found! v%s --> v%s\n", current, latestVer)
	if checkOnly {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\n  * Current exe: %q\n", exe)
	_, _ = fmt.Fprintf(out, "  * Target OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if latest.AssetURL != "" {
		_, _ = fmt.Fprintf(out, "  * Download URL: %s\n", latest.AssetURL)
	}
	_, _ = fmt.Fprintln(out)

	if !autoYes && !confirm(out, in) {
		_, _ = fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	_, _ = fmt.Fprintln(out, "Downloading release...")
	if err := updateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("self-upgrade failed: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Updated PosturAI to v%s\n", latestVer)
	return nil
}

// confirm asks before replacing the binary. Empty input means yes.
func confirm(out io.Writer, in io.Reader) bool {
	_, _ = fmt.Fprintln(out, "The new release will download and replace the current binary.")
	_, _ = fmt.Fprint(out, "Do you want to continue? [Y/n] ")

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "" || response == "y" || response == "yes"
}

package cli

import (
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/seuros/posturai/internal/config"
	"github.com/seuros/posturai/internal/upstream"
)

var Version string

// Embedded templates and static files passed from main
var (
	ViewsFS  fs.FS
	AssetsFS fs.FS
)

var (
	flagPort       string
	flagBackendURL string
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "posturai",
	Short: "Posture monitoring dashboard and assistant",
	Long: `PosturAI - posture monitoring companion.

PosturAI serves the posture statistics dashboard and the topic chat on top
of a posture monitoring backend. It keeps no data of its own: statistics,
alerts and assistant replies come from the backend.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string, views, assets fs.FS) error {
	Version = version
	ViewsFS = views
	AssetsFS = assets

	RootCmd.Version = version

	return RootCmd.Execute()
}

// loadConfig reads the configuration with the global flags applied.
func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(config.Overrides{
		Port:       flagPort,
		BackendURL: flagBackendURL,
	})
}

// newBackendClient builds an uncached client for one-shot commands.
func newBackendClient(cfg *config.Config) (*upstream.Client, error) {
	return upstream.NewClient(upstream.Options{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
	})
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "HTTP port (overrides PORT)")
	RootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend-url", "", "Monitoring backend URL (overrides BACKEND_URL)")

	RootCmd.AddCommand(serveCmd)
	setupSelfUpgrade()
}

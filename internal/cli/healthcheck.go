package cli

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the server is healthy",
	Long:  "Performs an HTTP request to the /up endpoint to verify the server and its monitoring backend are operational",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		url := fmt.Sprintf("http://localhost:%s/up", cfg.Port)
		if err := checkUp(url, 2*time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			return fmt.Errorf("healthcheck failed: %w", err)
		}
		return nil
	},
}

func checkUp(url string, timeout time.Duration) error {
	client := &http.Client{
		Timeout: timeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func init() {
	RootCmd.AddCommand(healthcheckCmd)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/seuros/posturai/internal/config"
	"github.com/seuros/posturai/internal/posture"
	"github.com/seuros/posturai/internal/topics"
	"github.com/seuros/posturai/internal/upstream"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the PosturAI installation",
	Long: `Run health checks on the PosturAI installation.

Checks performed:
  - Configuration loads
  - Topic catalogue is valid
  - Monitoring backend reachable
  - Posture statistics endpoint answers
  - Alerts endpoint answers

Example:
  posturai doctor
  posturai doctor --json`,
	RunE: runDoctor,
}

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

// backendProbe is the part of the upstream client the doctor exercises.
type backendProbe interface {
	Ping(ctx context.Context) error
	PostureStats(ctx context.Context, days int) (*posture.Stats, error)
	Alerts(ctx context.Context) (*upstream.Alerts, error)
}

const doctorTimeout = 10 * time.Second

func checkConfig(cfg *config.Config) CheckResult {
	return CheckResult{
		Name:    "Configuration",
		Pass:    true,
		Details: fmt.Sprintf("port %s, backend %s", cfg.Port, cfg.BackendURL),
	}
}

func checkTopics() CheckResult {
	n := len(topics.Default().All())
	if n == 0 {
		return CheckResult{Name: "Topic Catalogue", Pass: false, Error: "no topics defined"}
	}
	return CheckResult{Name: "Topic Catalogue", Pass: true, Details: fmt.Sprintf("%d topics", n)}
}

func checkBackendReachable(ctx context.Context, b backendProbe) CheckResult {
	if err := b.Ping(ctx); err != nil {
		return CheckResult{
			Name:       "Backend Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify BACKEND_URL and ensure the monitoring backend is running",
		}
	}
	return CheckResult{Name: "Backend Connection", Pass: true}
}

func checkStatsEndpoint(ctx context.Context, b backendProbe) CheckResult {
	stats, err := b.PostureStats(ctx, posture.DefaultPeriod)
	if err != nil {
		return CheckResult{
			Name:       "Posture Statistics",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Check the backend logs for /api/posture-stats",
		}
	}
	return CheckResult{
		Name:    "Posture Statistics",
		Pass:    true,
		Details: fmt.Sprintf("%d days of data", len(stats.DailyData)),
	}
}

func checkAlertsEndpoint(ctx context.Context, b backendProbe) CheckResult {
	alerts, err := b.Alerts(ctx)
	if err != nil {
		return CheckResult{
			Name:       "Alerts Feed",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Check the backend logs for /get_alerts_data",
		}
	}
	return CheckResult{
		Name:    "Alerts Feed",
		Pass:    true,
		Details: fmt.Sprintf("%d active alerts", len(alerts.Alerts)),
	}
}

// runChecks runs the backend checks in order. The endpoint checks are
// skipped when the backend does not answer.
func runChecks(ctx context.Context, cfg *config.Config, b backendProbe) []CheckResult {
	results := []CheckResult{checkConfig(cfg), checkTopics()}

	reach := checkBackendReachable(ctx, b)
	results = append(results, reach)
	if !reach.Pass {
		return results
	}
	results = append(results, checkStatsEndpoint(ctx, b))
	results = append(results, checkAlertsEndpoint(ctx, b))
	return results
}

func runDoctor(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(out, "✗ Configuration Error: %v\n", err)
		return err
	}

	results := []CheckResult{checkConfig(cfg), checkTopics()}
	client, err := newBackendClient(cfg)
	if err != nil {
		results = append(results, CheckResult{
			Name:       "Backend Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify BACKEND_URL is a valid http(s) URL",
		})
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
		defer cancel()
		results = runChecks(ctx, cfg, client)
	}

	if jsonOutput {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		outputDoctorHuman(out, results)
	}

	failed := 0
	for _, r := range results {
		if !r.Pass {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func outputDoctorHuman(w io.Writer, results []CheckResult) {
	p := newPalette(w)
	_, _ = fmt.Fprintln(w, p.heading.Render("\n🏥 PosturAI Health Check"))

	passed := 0
	for _, r := range results {
		icon := p.ok.Render("✓")
		if r.Pass {
			passed++
		} else {
			icon = p.fail.Render("✗")
		}

		_, _ = fmt.Fprintf(w, "%s %s", icon, r.Name)
		if r.Details != "" {
			_, _ = fmt.Fprint(w, p.muted.Render(fmt.Sprintf(" (%s)", r.Details)))
		}
		_, _ = fmt.Fprintln(w)

		if !r.Pass {
			if r.Error != "" {
				_, _ = fmt.Fprintf(w, "  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				_, _ = fmt.Fprintf(w, "  💡 %s\n", r.Suggestion)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d/%d checks passed\n\n", passed, len(results))
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
	RootCmd.AddCommand(doctorCmd)
}

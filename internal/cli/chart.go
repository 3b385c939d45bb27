package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/seuros/posturai/internal/handlers"
	"github.com/seuros/posturai/internal/piechart"
	"github.com/seuros/posturai/internal/posture"
)

// slicePalette colours slices given without an explicit colour.
var slicePalette = []string{
	"#4477AA",
	"#EE6677",
	"#228833",
	"#CCBB44",
	"#66CCEE",
	"#AA3377",
	"#BBBBBB",
}

var chartCmd = &cobra.Command{
	Use:   "chart [label=value[:color]]...",
	Short: "Render a donut chart as SVG",
	Long: `Render a donut chart as SVG.

Slices are given as label=value pairs with an optional colour. Without
arguments, --from selects one of the dashboard charts and fetches its data
from the monitoring backend.

Example:
  posturai chart "Good=66:#10b981" "Forward Lean=25" "Side Tilt=9" > posture.svg
  posturai chart --from alerts --days 14 --output alerts.svg
  posturai chart Morning=25 Afternoon=45 --geometry`,
	RunE: runChart,
}

func runChart(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetFloat64("size")
	output, _ := cmd.Flags().GetString("output")
	geometry, _ := cmd.Flags().GetBool("geometry")
	from, _ := cmd.Flags().GetString("from")
	days, _ := cmd.Flags().GetInt("days")

	var dist piechart.Distribution
	var err error
	switch {
	case len(args) > 0:
		dist, err = parseSlices(args)
	case from != "":
		dist, err = fetchDistribution(from, days)
	default:
		return errors.New("give slices as label=value or select a dashboard chart with --from")
	}
	if err != nil {
		return err
	}

	chart, err := piechart.Compute(size, dist)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return writeChart(w, chart, geometry)
}

func writeChart(w io.Writer, chart *piechart.Chart, geometry bool) error {
	if geometry {
		return writeJSON(w, chart)
	}
	piechart.Render(w, chart, piechart.DefaultTheme)
	return nil
}

// parseSlices parses label=value[:color] arguments. Every malformed
// argument is reported.
func parseSlices(args []string) (piechart.Distribution, error) {
	dist := make(piechart.Distribution, 0, len(args))
	var errs error
	for i, arg := range args {
		s, err := parseSlice(arg)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if s.Color == "" {
			s.Color = slicePalette[i%len(slicePalette)]
		}
		dist = append(dist, s)
	}
	if errs != nil {
		return nil, errs
	}
	return dist, nil
}

func parseSlice(arg string) (piechart.Slice, error) {
	label, rest, ok := strings.Cut(arg, "=")
	label = strings.TrimSpace(label)
	if !ok || label == "" {
		return piechart.Slice{}, fmt.Errorf("slice %q: expected label=value", arg)
	}

	raw, color, _ := strings.Cut(rest, ":")
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return piechart.Slice{}, fmt.Errorf("slice %q: invalid value %q", arg, raw)
	}
	return piechart.Slice{Label: label, Value: value, Color: strings.TrimSpace(color)}, nil
}

func fetchDistribution(name string, days int) (piechart.Distribution, error) {
	def, ok := posture.LookupChart(name)
	if !ok {
		return nil, fmt.Errorf("unknown chart %q", name)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := newBackendClient(cfg)
	if err != nil {
		return nil, err
	}

	stats, err := client.PostureStats(context.Background(), days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics: %w", err)
	}
	return def.Build(stats.Summary), nil
}

func init() {
	chartCmd.Flags().Float64("size", handlers.DefaultChartSize, "Canvas width and height")
	chartCmd.Flags().StringP("output", "o", "", "Write the SVG to a file instead of stdout")
	chartCmd.Flags().Bool("geometry", false, "Print the computed wedge geometry as JSON")
	chartCmd.Flags().String("from", "", "Dashboard chart to fetch (posture, alerts, activity)")
	chartCmd.Flags().Int("days", posture.DefaultPeriod, "Days of statistics used with --from")
	RootCmd.AddCommand(chartCmd)
}

package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seuros/posturai/internal/handlers"
	"github.com/seuros/posturai/internal/piechart"
	"github.com/seuros/posturai/internal/posture"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print posture statistics from the monitoring backend",
	Long: `Print posture statistics from the monitoring backend.

The table output shows the summary, the chart distributions and the daily
series. JSON prints the backend response, CSV the daily series.

Example:
  posturai stats
  posturai stats --days 30 --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, formatTable, formatJSON, formatCSV); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newBackendClient(cfg)
		if err != nil {
			return err
		}

		stats, err := client.PostureStats(context.Background(), days)
		if err != nil {
			return fmt.Errorf("failed to fetch statistics: %w", err)
		}
		return outputStats(cmd.OutOrStdout(), stats, days, format)
	},
}

func outputStats(w io.Writer, stats *posture.Stats, days int, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, stats)
	case formatCSV:
		return outputDailyCSV(w, stats.DailyData)
	default:
		return outputStatsTable(w, stats, days)
	}
}

func outputStatsTable(w io.Writer, stats *posture.Stats, days int) error {
	p := newPalette(w)
	s := stats.Summary

	_, _ = fmt.Fprintln(w, p.heading.Render(fmt.Sprintf("Posture Statistics (last %d days)", days)))
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Total Hours:\t%s\n", strconv.FormatFloat(s.TotalHours, 'f', 1, 64))
	_, _ = fmt.Fprintf(tw, "Good Posture:\t%s%%\n", strconv.FormatFloat(s.GoodPosturePercentage, 'f', 1, 64))
	_, _ = fmt.Fprintf(tw, "Forward Lean:\t%s%%\n", strconv.FormatFloat(s.ForwardLeanPercentage, 'f', 1, 64))
	_, _ = fmt.Fprintf(tw, "Side Tilt:\t%s%%\n", strconv.FormatFloat(s.SideTiltPercentage, 'f', 1, 64))
	_, _ = fmt.Fprintf(tw, "Total Alerts:\t%d\n", s.TotalAlerts)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, def := range posture.Charts {
		chart, err := piechart.Compute(handlers.DefaultChartSize, def.Build(s))
		if err != nil {
			return fmt.Errorf("%s distribution: %w", def.Name, err)
		}
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, p.heading.Render(def.Title))
		if chart.Empty() {
			_, _ = fmt.Fprintln(w, p.muted.Render("  no data"))
			continue
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, wedge := range chart.Wedges {
			_, _ = fmt.Fprintf(tw, "  %s%s\t%s%%\n", p.swatch(w, wedge.Color), wedge.Label, wedge.Legend)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w)
	if len(stats.DailyData) == 0 {
		_, _ = fmt.Fprintln(w, "No daily data")
		return nil
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DATE\tGOOD\tPOOR\tALERTS\tHOURS")
	_, _ = fmt.Fprintln(tw, "----\t----\t----\t------\t-----")
	for _, d := range stats.DailyData {
		_, _ = fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%d\t%.1f\n",
			d.Date,
			d.GoodPosturePercentage,
			d.PoorPosturePercentage,
			d.AlertCount,
			d.HoursMonitored,
		)
	}
	return tw.Flush()
}

func outputDailyCSV(w io.Writer, daily []posture.DailyStat) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{"date", "good_posture_percentage", "poor_posture_percentage", "alert_count", "hours_monitored"})
	if err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, d := range daily {
		err := cw.Write([]string{
			d.Date,
			strconv.FormatFloat(d.GoodPosturePercentage, 'f', 1, 64),
			strconv.FormatFloat(d.PoorPosturePercentage, 'f', 1, 64),
			strconv.Itoa(d.AlertCount),
			strconv.FormatFloat(d.HoursMonitored, 'f', 1, 64),
		})
		if err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func init() {
	statsCmd.Flags().Int("days", posture.DefaultPeriod, "Number of days to report")
	statsCmd.Flags().String("format", formatTable, "Output format (table, json, csv)")
	RootCmd.AddCommand(statsCmd)
}

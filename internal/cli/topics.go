package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seuros/posturai/internal/topics"
)

var topicsCmd = &cobra.Command{
	Use:   "topics [id]",
	Short: "List the chat topics",
	Long: `List the chat topics and their quick questions.

Example:
  posturai topics
  posturai topics exercises
  posturai topics --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format, formatTable, formatJSON); err != nil {
			return err
		}

		catalog := topics.Default()
		if len(args) == 1 {
			topic, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), topic)
			}
			return outputTopic(cmd.OutOrStdout(), topic)
		}

		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), catalog.All())
		}
		return outputTopicsTable(cmd.OutOrStdout(), catalog.All())
	},
}

func outputTopicsTable(w io.Writer, list []topics.Topic) error {
	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "No topics found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
	_, _ = fmt.Fprintln(tw, "--\t-----\t-----------")
	for _, t := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s %s\t%s\n", t.ID, t.Icon, t.Title, t.Description)
	}
	return tw.Flush()
}

func outputTopic(w io.Writer, t topics.Topic) error {
	p := newPalette(w)
	_, _ = fmt.Fprintln(w, p.heading.Render(t.Icon+" "+t.Title))
	_, _ = fmt.Fprintln(w, t.Description)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, p.muted.Render(t.Greeting()))
	_, _ = fmt.Fprintln(w)
	for _, q := range t.Questions {
		_, _ = fmt.Fprintf(w, "  • %s\n", strings.TrimSpace(q))
	}
	return nil
}

func init() {
	topicsCmd.Flags().String("format", formatTable, "Output format (table, json)")
	RootCmd.AddCommand(topicsCmd)
}

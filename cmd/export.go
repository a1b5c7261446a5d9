package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/nudge/internal/export"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded entries to a file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (YYYY-MM-DD), default 30 days ago")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (YYYY-MM-DD), default today")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file path (default nudge-export.<format>)")
}

func runExport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	from, err := parseDateFlag(exportFrom, now.AddDate(0, 0, -30))
	if err != nil {
		return err
	}
	to, err := parseDateFlag(exportTo, now)
	if err != nil {
		return err
	}
	// Make the end bound inclusive of the whole day.
	to = to.AddDate(0, 0, 1)

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	entries, skipped, err := st.EntriesInRange(from, to)
	if err != nil {
		return fmt.Errorf("reading entries: %w", err)
	}
	if skipped > 0 {
		fmt.Printf("warning: %d entries with unreadable timestamps were skipped\n", skipped)
	}

	path := exportOut
	switch exportFormat {
	case "csv":
		if path == "" {
			path = "nudge-export.csv"
		}
		if err := export.ToCSV(entries, path); err != nil {
			return err
		}
	case "json":
		if path == "" {
			path = "nudge-export.json"
		}
		if err := export.ToJSON(entries, path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}

	fmt.Printf("Exported %d entries to %s\n", len(entries), path)
	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/nudge/internal/report"
)

var (
	reportDate string
	reportFrom string
	reportTo   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time reports",
}

var reportDayCmd = &cobra.Command{
	Use:   "day",
	Short: "Per-category totals for one day",
	Args:  cobra.NoArgs,
	RunE:  runReportDay,
}

var reportWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Per-category totals for the Monday-to-Sunday week",
	Args:  cobra.NoArgs,
	RunE:  runReportWeek,
}

var reportAverageCmd = &cobra.Command{
	Use:   "average",
	Short: "Per-category daily averages over a date range",
	Args:  cobra.NoArgs,
	RunE:  runReportAverage,
}

func init() {
	reportDayCmd.Flags().StringVar(&reportDate, "date", "", "Date to report (YYYY-MM-DD, default today)")
	reportWeekCmd.Flags().StringVar(&reportDate, "date", "", "Any date inside the week (YYYY-MM-DD, default today)")
	reportAverageCmd.Flags().StringVar(&reportFrom, "from", "", "Range start (YYYY-MM-DD), required")
	reportAverageCmd.Flags().StringVar(&reportTo, "to", "", "Range end (YYYY-MM-DD), default today")
	reportCmd.AddCommand(reportDayCmd)
	reportCmd.AddCommand(reportWeekCmd)
	reportCmd.AddCommand(reportAverageCmd)
}

func parseDateFlag(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

func newEngine() (*report.Engine, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return report.NewEngine(st, newLogger()), func() { st.Close() }, nil
}

func runReportDay(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(reportDate, time.Now())
	if err != nil {
		return err
	}
	engine, closeStore, err := newEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	day := engine.Day(date)
	fmt.Printf("%s\n", day.Date)
	printTotals(day.Entries)
	fmt.Printf("%-20s%s\n", "Total", formatMinutes(day.TotalMinutes))
	return nil
}

func runReportWeek(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(reportDate, time.Now())
	if err != nil {
		return err
	}
	engine, closeStore, err := newEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	week := engine.Week(date)
	fmt.Printf("Week %s – %s\n", week.StartDate, week.EndDate)
	for _, day := range week.Days {
		if day.TotalMinutes == 0 {
			continue
		}
		fmt.Printf("  %s  %s\n", day.Date, formatMinutes(day.TotalMinutes))
	}
	fmt.Println("--------------------------------")
	printTotals(week.Totals)
	fmt.Printf("%-20s%s\n", "Total", formatMinutes(week.TotalMinutes))
	return nil
}

func runReportAverage(cmd *cobra.Command, args []string) error {
	if reportFrom == "" {
		return fmt.Errorf("--from is required")
	}
	from, err := parseDateFlag(reportFrom, time.Time{})
	if err != nil {
		return err
	}
	to, err := parseDateFlag(reportTo, time.Now())
	if err != nil {
		return err
	}
	engine, closeStore, err := newEngine()
	if err != nil {
		return err
	}
	defer closeStore()

	totals := engine.Average(from, to)
	fmt.Printf("Daily averages %s – %s (active days only)\n",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	for _, t := range totals {
		fmt.Printf("%-20s%6.1f min  (%.1f prompts)\n", t.CategoryName, t.Minutes, t.Count)
	}
	return nil
}

func printTotals(totals []report.CategoryTotal) {
	for _, t := range totals {
		fmt.Printf("%-20s%s\n", t.CategoryName, formatMinutes(t.Minutes))
	}
}

func formatMinutes(m float64) string {
	h := int(m) / 60
	rem := m - float64(h*60)
	if h > 0 {
		return fmt.Sprintf("%dh %02.0fm", h, rem)
	}
	return fmt.Sprintf("%.0fm", rem)
}

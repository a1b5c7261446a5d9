package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/nudge/internal/store"
)

func ToCSV(entries []store.EntryDetail, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Category", "Activity", "Start", "End", "Minutes"}); err != nil {
		return err
	}

	for _, e := range entries {
		start := e.PromptedAt.Add(-time.Duration(e.CreditedMinutes * float64(time.Minute)))
		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.CategoryName,
			e.ActivityName,
			start.Local().Format(time.RFC3339),
			e.PromptedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%.1f", e.CreditedMinutes),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

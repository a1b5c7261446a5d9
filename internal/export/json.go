package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/nudge/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Activity string  `json:"activity"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Minutes  float64 `json:"minutes"`
}

func ToJSON(entries []store.EntryDetail, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}

	for _, e := range entries {
		start := e.PromptedAt.Add(-time.Duration(e.CreditedMinutes * float64(time.Minute)))
		out.Entries = append(out.Entries, jsonEntry{
			ID:       e.ID,
			Category: e.CategoryName,
			Activity: e.ActivityName,
			Start:    start.Local().Format(time.RFC3339),
			End:      e.PromptedAt.Local().Format(time.RFC3339),
			Minutes:  e.CreditedMinutes,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

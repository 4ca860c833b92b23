package report

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"lading/internal/arbiter"
)

// Summary renders the end-of-run manifest table for the console.
func Summary(outcomes []arbiter.ManifestOutcome) string {
	if len(outcomes) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Manifest", "Total", "Matched", "Present", "Missing", "Status", "Forced"})

	for _, outcome := range outcomes {
		status := outcome.Status.String()
		if outcome.MoveOnly {
			status = "move-only"
		}
		forced := ""
		if outcome.Forced {
			forced = "yes"
		}
		tw.AppendRow(table.Row{
			outcome.ManifestID,
			strconv.Itoa(outcome.TotalEntries),
			strconv.Itoa(outcome.Matched),
			strconv.Itoa(outcome.AlreadyPresent),
			strconv.Itoa(len(outcome.Missing)),
			status,
			forced,
		})
	}

	configs := []table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	}
	for col := 2; col <= 5; col++ {
		configs = append(configs, table.ColumnConfig{
			Number: col, Align: text.AlignRight, AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/melih-ucgun/wrtprov/internal/state"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past provisioning runs",
	Run: func(cmd *cobra.Command, args []string) {
		hm := state.NewHistoryManager("")
		runs, err := hm.LoadHistory()
		if err != nil {
			pterm.Error.Println("Failed to load history:", err)
			return
		}

		if len(runs) == 0 {
			pterm.Info.Println("No history found.")
			return
		}

		pterm.DefaultHeader.Println("Run History")

		tableData := [][]string{{"ID", "Date", "Host", "Status", "Resources"}}

		// Show latest first (reverse iteration)
		for i := len(runs) - 1; i >= 0; i-- {
			run := runs[i]
			t, _ := time.Parse(time.RFC3339, run.Timestamp)
			dateStr := t.Format("2006-01-02 15:04:05")

			statusStyle := pterm.NewStyle(pterm.FgGreen)
			if run.Status == "failed" {
				statusStyle = pterm.NewStyle(pterm.FgRed)
			} else if run.Status == "aborted" {
				statusStyle = pterm.NewStyle(pterm.FgYellow)
			}

			tableData = append(tableData, []string{
				run.ID,
				dateStr,
				run.Host,
				statusStyle.Sprint(run.Status),
				fmt.Sprintf("%d", len(run.Entries)),
			})
		}

		pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

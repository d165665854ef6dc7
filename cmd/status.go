package cmd

import (
	"encoding/json"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/diskord/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show disk usage",
	Long:  "Live usage gauges for the root and home filesystems.",
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetInt("refresh")
		asJSON, _ := cmd.Flags().GetBool("json")
		mounts, _ := cmd.Flags().GetStringSlice("mount")

		fd := os.Stdout.Fd()
		if asJSON || !isatty.IsTerminal(fd) {
			disks, err := status.CollectDisks(cmd.Context(), mounts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(disks)
			}
			return status.PrintTable(cmd.OutOrStdout(), disks)
		}

		model := status.NewStatusModel(mounts, time.Duration(refresh)*time.Second)
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	statusCmd.Flags().Int("refresh", 2, "Refresh interval in seconds")
	statusCmd.Flags().Bool("json", false, "Output disk usage as JSON")
	statusCmd.Flags().StringSlice("mount", status.DefaultMounts, "Mount points to report")
}

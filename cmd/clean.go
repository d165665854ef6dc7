package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/diskord/internal/clean"
	"github.com/lakshaymaurya-felt/diskord/internal/config"
	"github.com/lakshaymaurya-felt/diskord/internal/core"
	"github.com/lakshaymaurya-felt/diskord/internal/logging"
	"github.com/lakshaymaurya-felt/diskord/internal/ui"
)

var (
	dryRun      bool
	cleanList   bool
	cleanTarget []string
	cleanGroup  string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Free up disk space",
	Long: `Clean package caches, old journals, the desktop trash and developer
tool caches. Targets marked root run through the privilege helper.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the cleanup plan without deleting")
	cleanCmd.Flags().BoolVar(&cleanList, "list", false, "List targets with their current size")
	cleanCmd.Flags().StringSliceVar(&cleanTarget, "target", nil, "Clean only the named targets (e.g. YayCache,NpmCache)")
	cleanCmd.Flags().StringVar(&cleanGroup, "category", "", "Clean only one category: system or dev")
}

func runClean(cmd *cobra.Command, args []string) error {
	targets, err := selectTargets(config.GetCleanTargets(), cleanGroup, cleanTarget)
	if err != nil {
		return err
	}

	cleaner := clean.NewCleaner(
		core.NewPrivilegedRunner(cfg.PrivilegeHelper, logging.Named("privilege")),
		logging.Named("clean"))
	out := cmd.OutOrStdout()

	if cleanList {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TARGET\tCATEGORY\tSIZE\tROOT\tDESCRIPTION")
		for _, m := range cleaner.MeasureAll(cmd.Context(), targets) {
			root := ""
			if m.Target.RequiresAdmin {
				root = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				m.Target.Name, m.Target.Category, core.FormatSize(m.Size), root, m.Target.Description)
		}
		return tw.Flush()
	}

	var errs []error
	var freed int64
	for _, t := range targets {
		res := cleaner.Clean(cmd.Context(), t, dryRun)
		switch {
		case res.Err != nil:
			errs = append(errs, res.Err)
			fmt.Fprintf(out, "  %s %-16s %v\n", ui.IconError, t.Name, res.Err)
		case dryRun:
			fmt.Fprintf(out, "  %s %-16s would free up to %s\n", ui.IconBullet, t.Name, core.FormatSize(res.Before))
			freed += res.Before
		default:
			fmt.Fprintf(out, "  %s %-16s freed %s\n", ui.IconSuccess, t.Name, core.FormatSize(res.Freed()))
			freed += res.Freed()
		}
	}

	verb := "Freed"
	if dryRun {
		verb = "Would free up to"
	}
	fmt.Fprintf(out, "\n  %s %s\n", verb, core.FormatSize(freed))
	return errors.Join(errs...)
}

// selectTargets filters targets by category and by name. Unknown names are
// an error so typos do not silently clean nothing.
func selectTargets(all []config.CleanTarget, category string, names []string) ([]config.CleanTarget, error) {
	var out []config.CleanTarget
	for _, t := range all {
		if category != "" && t.Category != category {
			continue
		}
		if len(names) > 0 && !slices.ContainsFunc(names, func(n string) bool {
			return strings.EqualFold(n, t.Name)
		}) {
			continue
		}
		out = append(out, t)
	}

	for _, n := range names {
		if !slices.ContainsFunc(all, func(t config.CleanTarget) bool {
			return strings.EqualFold(n, t.Name)
		}) {
			return nil, fmt.Errorf("unknown clean target %q", n)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no clean targets match")
	}
	return out, nil
}

package cmd

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lakshaymaurya-felt/diskord/internal/analyze"
	"github.com/lakshaymaurya-felt/diskord/internal/clean"
	"github.com/lakshaymaurya-felt/diskord/internal/config"
	"github.com/lakshaymaurya-felt/diskord/internal/core"
	"github.com/lakshaymaurya-felt/diskord/internal/logging"
	"github.com/lakshaymaurya-felt/diskord/internal/status"
	"github.com/lakshaymaurya-felt/diskord/internal/trash"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Explore disk usage",
	Long: `Interactive disk space analyzer.

Lists the largest entries of a directory, lets you drill in and out, and
deletes what you select. Deletions inside your home directory go to a
session trash and can be undone; anything outside it is removed
permanently with elevated privileges after a second confirmation.

When stdout is not a terminal a plain listing is printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	registerAnalyzeFlags(analyzeCmd)
}

func registerAnalyzeFlags(c *cobra.Command) {
	c.Flags().Bool("static", false, "Print a plain listing instead of the interactive view")
	c.Flags().Int("concurrency", 8, "Maximum subtrees scanned in parallel")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	home := config.HomeDir()
	root := home
	if len(args) == 1 {
		root = args[0]
	}
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	static, _ := cmd.Flags().GetBool("static")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	log := logging.Named("analyze")
	scanner := analyze.NewScanner(concurrency, logging.Named("scanner"))

	fd := os.Stdout.Fd()
	if static || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		entries := scanner.Aggregate(root)
		analyze.PrintStatic(cmd.OutOrStdout(), analyze.Canonical(root), entries, cfg.Exclude, scanner.Partial())
		return nil
	}

	runner := core.NewPrivilegedRunner(cfg.PrivilegeHelper, logging.Named("privilege"))
	store := trash.NewStore(trash.Options{
		Dir:           cfg.TrashDir,
		Home:          home,
		Runner:        runner,
		SettleTimeout: time.Duration(cfg.SettleTimeout),
		Protected:     config.GetNeverDeletePaths(),
		Logger:        logging.Named("trash"),
	})

	log.Info("session started",
		zap.String("root", root),
		zap.String("home", home),
		zap.String("trash", cfg.TrashDir))

	model := analyze.NewAnalyzeModel(cmd.Context(), analyze.Deps{
		Session: analyze.NewSession(root, scanner),
		Gate:    analyze.NewGate(home, store, logging.Named("gate")),
		Store:   store,
		Scanner: scanner,
		Cleaner: clean.NewCleaner(runner, logging.Named("clean")),
		Targets: config.GetCleanTargets(),
		Mounts:  status.DefaultMounts,
		Logger:  log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()

	log.Info("session ended", zap.Int("trash_items", store.Len()), zap.Error(err))
	return err
}

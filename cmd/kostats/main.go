// Package main provides the CLI entrypoint for kostats.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kostats/internal/config"
	"github.com/verte-zerg/kostats/internal/koreader"
	"github.com/verte-zerg/kostats/internal/model"
	"github.com/verte-zerg/kostats/internal/session"
	"github.com/verte-zerg/kostats/internal/stats"
	"github.com/verte-zerg/kostats/internal/tui"
)

const (
	defaultTop        = 10
	defaultWindow     = 1
	defaultPlotHeight = 10
)

var (
	reportTop        int
	reportWindow     int
	reportPlotHeight int
	reportColor      bool

	dashTop        int
	dashWindow     int
	dashPlotHeight int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kostats [file]",
		Short:         "KoReader reading statistics dashboard",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}
	rootCmd.Flags().IntVar(&dashTop, "top", defaultTop, "books shown in chart sections")
	rootCmd.Flags().IntVar(&dashWindow, "window", defaultWindow, "moving average window for the activity plot")
	rootCmd.Flags().IntVar(&dashPlotHeight, "plot-height", defaultPlotHeight, "height of the activity plot")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "top", &dashTop, fileCfg.Report.Top)
	applyIntConfig(cmd, "window", &dashWindow, fileCfg.Report.Window)
	applyIntConfig(cmd, "plot-height", &dashPlotHeight, fileCfg.Report.PlotHeight)

	cfg := model.ReportConfig{
		Top:        dashTop,
		Window:     dashWindow,
		PlotHeight: dashPlotHeight,
	}
	if err := validateReportConfig(cfg); err != nil {
		return err
	}

	sess := session.New()
	if len(args) == 1 {
		if err := sess.LoadFile(context.Background(), args[0]); err != nil {
			return loadError(args[0], err)
		}
	}

	dashboard := tui.NewModel(sess, cfg)
	program := tea.NewProgram(dashboard, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print a text report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&reportTop, "top", defaultTop, "books shown in chart sections")
	cmd.Flags().IntVar(&reportWindow, "window", defaultWindow, "moving average window for the activity plot")
	cmd.Flags().IntVar(&reportPlotHeight, "plot-height", defaultPlotHeight, "height of the activity plot")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force color output")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "top", &reportTop, fileCfg.Report.Top)
	applyIntConfig(cmd, "window", &reportWindow, fileCfg.Report.Window)
	applyIntConfig(cmd, "plot-height", &reportPlotHeight, fileCfg.Report.PlotHeight)
	applyBoolConfig(cmd, "color", &reportColor, fileCfg.Report.Color)

	cfg := model.ReportConfig{
		Top:        reportTop,
		Window:     reportWindow,
		PlotHeight: reportPlotHeight,
		Color:      reportColor,
	}
	if err := validateReportConfig(cfg); err != nil {
		return err
	}

	overall, diag, err := koreader.ParseFile(context.Background(), args[0])
	if err != nil {
		return loadError(args[0], err)
	}
	logDiagnostics(diag)

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, overall); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderBookTable(out, overall.AllBookStats); err != nil {
		return fmt.Errorf("failed to render book table: %w", err)
	}
	if err := stats.RenderTopBooks(out, "Top Books by Pages Read", overall.PagesReadPerBook, cfg.Top); err != nil {
		return fmt.Errorf("failed to render pages chart: %w", err)
	}
	if err := stats.RenderTopBooks(out, "Top Books by Time Spent", overall.TimeSpentPerBook, cfg.Top); err != nil {
		return fmt.Errorf("failed to render time chart: %w", err)
	}
	if len(overall.ReadingActivity) > 0 {
		if err := stats.RenderActivity(out, overall.ReadingActivity, cfg.Window, 0, cfg.PlotHeight, cfg.Color); err != nil {
			return fmt.Errorf("failed to render activity: %w", err)
		}
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show schema variant and extraction diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectCmd,
	}
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	overall, diag, err := koreader.ParseFile(context.Background(), args[0])
	out := cmd.OutOrStdout()
	if len(diag.Tables) > 0 {
		fmt.Fprintf(out, "Tables: %s\n", strings.Join(diag.Tables, ", "))
	}
	fmt.Fprintf(out, "Variant: %s\n", diag.Variant)
	if err != nil {
		return loadError(args[0], err)
	}
	fmt.Fprintf(out, "Rows scanned: %d\n", diag.RowsScanned)
	fmt.Fprintf(out, "Rows skipped: %d\n", diag.RowsSkipped)
	fmt.Fprintf(out, "Notes defaulted: %d\n", diag.NotesDefaulted)
	fmt.Fprintf(out, "Timestamps defaulted: %d\n", diag.TimestampsDefaulted)
	fmt.Fprintf(out, "Books: %d\n", overall.TotalBooks)
	fmt.Fprintf(out, "Activity days: %d\n", len(overall.ReadingActivity))
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func loadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to process %s: %v", path, err),
		"The file must be a KoReader metadata.sqlite export",
		"with either a book or a bookmark table.",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logDiagnostics(diag koreader.Diagnostics) {
	if diag.RowsSkipped == 0 && diag.NotesDefaulted == 0 && diag.TimestampsDefaulted == 0 {
		return
	}
	logErrf("schema %s: skipped %d rows, defaulted %d notes blobs and %d timestamps\n",
		diag.Variant, diag.RowsSkipped, diag.NotesDefaulted, diag.TimestampsDefaulted)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateReportConfig(cfg model.ReportConfig) error {
	if cfg.Top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if cfg.Window < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if cfg.PlotHeight < 1 {
		return fmt.Errorf("--plot-height must be >= 1")
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kostats configuration
# Uncomment a value to enable it. CLI flags override config values.

[report]
# top = %d             # Books shown in chart sections (0 = all)
# window = %d           # Moving average window for the activity plot
# plot-height = %d     # Height of the activity plot
# color = false        # Force color output in reports
`,
		defaultTop,
		defaultWindow,
		defaultPlotHeight,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

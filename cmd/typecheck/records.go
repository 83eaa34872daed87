package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/typecheck/internal/config"
	"github.com/verte-zerg/typecheck/internal/identity"
	"github.com/verte-zerg/typecheck/internal/logging"
	"github.com/verte-zerg/typecheck/internal/model"
	"github.com/verte-zerg/typecheck/internal/stats"
	"github.com/verte-zerg/typecheck/internal/store"
)

const maxImportLine = 1 << 20

var (
	filterLang  string
	filterSince string
	filterLast  int
	filterAll   bool

	statsCurveWindow int
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&filterSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&filterLast, "last", 0, "limit to last N results")
	cmd.Flags().BoolVar(&filterAll, "all", false, "include results of every user")
}

// resultFilter builds a filter from the shared flags. Results are scoped to
// the signed-in user unless --all is set.
func resultFilter(cmd *cobra.Command) (model.ResultFilter, error) {
	if _, err := loadFileConfig(cmd); err != nil {
		return model.ResultFilter{}, err
	}
	if filterLast < 0 {
		return model.ResultFilter{}, fmt.Errorf("--last must be >= 0")
	}
	filter := model.ResultFilter{
		Lang: filterLang,
		Last: filterLast,
	}
	if filterSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", filterSince, time.Local)
		if err != nil {
			return model.ResultFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	if !filterAll {
		if id := identity.NewStatic(profileEmail, profileName).CurrentIdentity(); id != nil {
			filter.IdentityKey = id.Key
		}
	}
	return filter, nil
}

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List stored results",
		Args:  cobra.NoArgs,
		RunE:  runResultsCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func runResultsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := resultFilter(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	results, err := st.ListResults(commandContext(cmd), filter)
	if err != nil {
		return fmt.Errorf("failed to list results: %w", err)
	}
	return stats.RenderResultsTable(cmd.OutOrStdout(), results)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addFilterFlags(cmd)
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := resultFilter(cmd)
	if err != nil {
		return err
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := stats.BuildReport(commandContext(cmd), st, model.StatsConfig{
		Filter:      filter,
		CurveWindow: statsCurveWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to build stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Results); err != nil {
		return err
	}
	if len(report.Results) == 0 {
		return nil
	}
	if err := stats.RenderCurves(out, report.Results, statsCurveWindow, terminalWidth()); err != nil {
		return err
	}
	if report.Best != nil {
		if _, err := fmt.Fprintf(out, "Personal best: %d WPM on %s\n\n",
			report.Best.WPM, report.Best.Timestamp.Local().Format("2006-01-02")); err != nil {
			return err
		}
	}
	recent := report.Results
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	return stats.RenderResultsTable(out, recent)
}

// terminalWidth returns the stdout width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify NUMBER",
		Short: "Look up a certificate by number",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerifyCmd,
	}
}

func runVerifyCmd(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := st.GetCertificate(commandContext(cmd), args[0])
	if err != nil {
		return lookupError(args[0], err)
	}
	return stats.RenderCertificate(cmd.OutOrStdout(), rec)
}

// lookupError reports a failed certificate lookup once, through cobra.
func lookupError(number string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("certificate %s %w", strings.TrimSpace(number), err)
	}
	return fmt.Errorf("failed to look up certificate: %w", err)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import results from a JSON lines export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	logger, err := logging.New("", verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() {
		_ = f.Close()
	}()

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	imported, skipped, err := importResults(commandContext(cmd), f, st, logger)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d results, skipped %d.\n", imported, skipped); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("import finished",
		zap.String("path", config.DefaultDBPath()),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped))
	return nil
}

type resultInserter interface {
	InsertResult(ctx context.Context, rec model.TestResultRecord) error
}

// importResults inserts every normalizable line. Rows that fail to decode,
// normalize or insert are logged and skipped.
func importResults(ctx context.Context, r io.Reader, st resultInserter, logger *zap.Logger) (int, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)

	imported, skipped, lineNo := 0, 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw model.RawResult
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			logger.Warn("skipping malformed line", zap.Int("line", lineNo), zap.Error(err))
			skipped++
			continue
		}
		rec, err := raw.Normalize()
		if err != nil {
			logger.Warn("skipping result", zap.Int("line", lineNo), zap.Error(err))
			skipped++
			continue
		}
		if err := st.InsertResult(ctx, rec); err != nil {
			logger.Warn("failed to insert result", zap.Int("line", lineNo), zap.Error(err))
			skipped++
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, skipped, fmt.Errorf("failed to read import file: %w", err)
	}
	return imported, skipped, nil
}

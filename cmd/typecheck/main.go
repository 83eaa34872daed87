// Package main provides the CLI entrypoint for typecheck.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typecheck/internal/certificate"
	"github.com/verte-zerg/typecheck/internal/clock"
	"github.com/verte-zerg/typecheck/internal/config"
	"github.com/verte-zerg/typecheck/internal/identity"
	"github.com/verte-zerg/typecheck/internal/logging"
	"github.com/verte-zerg/typecheck/internal/model"
	"github.com/verte-zerg/typecheck/internal/passage"
	"github.com/verte-zerg/typecheck/internal/session"
	"github.com/verte-zerg/typecheck/internal/store"
	"github.com/verte-zerg/typecheck/internal/tui"
)

const (
	defaultLang         = "en"
	defaultDuration     = clock.DefaultDurationSeconds
	defaultPassageWords = 30
	defaultCurveWindow  = 5
)

var (
	practiceLang         string
	practiceDuration     int
	practiceMinutes      int
	practiceExam         string
	practicePassages     string
	practiceWordlist     string
	practicePassageWords int
	practiceSeed         int64

	profileEmail string
	profileName  string
	verbose      bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typecheck",
		Short:         "Timed typing tests with certificates",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&profileEmail, "email", "", "sign in as this email")
	rootCmd.PersistentFlags().StringVar(&profileName, "name", "", "display name for the signed-in user")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addPassageFlags(rootCmd)
	rootCmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language tag stored with results")
	rootCmd.Flags().IntVar(&practiceDuration, "duration", defaultDuration, "test length in seconds")
	rootCmd.Flags().IntVar(&practiceMinutes, "minutes", 0, "test length in minutes (1, 2, 5, 10, 20); overrides --duration")
	rootCmd.Flags().StringVar(&practiceExam, "exam", "", "exam name stored with results")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPassagesCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func addPassageFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practicePassages, "passages", "", "file with one passage per line")
	cmd.Flags().StringVar(&practiceWordlist, "wordlist", "", "build passages from a word list file")
	cmd.Flags().IntVar(&practicePassageWords, "passage-words", defaultPassageWords, "words per passage built from --wordlist")
	cmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed for passage selection (0 = time)")
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Session.Lang)
	applyIntConfig(cmd, "duration", &practiceDuration, fileCfg.Session.Duration)
	applyStringConfig(cmd, "exam", &practiceExam, fileCfg.Session.Exam)

	if practiceMinutes != 0 {
		practiceDuration = practiceMinutes * 60
	}
	cfg := model.Config{
		Lang:            practiceLang,
		DurationSeconds: practiceDuration,
		ExamName:        practiceExam,
		PassagesPath:    practicePassages,
		WordListPath:    practiceWordlist,
		PassageWords:    practicePassageWords,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	rnd := newRand()
	pool, err := loadPassagePool(cfg, rnd)
	if err != nil {
		return err
	}

	logger, err := logging.New(config.DefaultLogPath(), verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ids := identity.NewStatic(profileEmail, profileName)
	unsubscribe := ids.Subscribe(func(id *model.Identity) {
		if id == nil {
			logger.Info("signed out")
			return
		}
		logger.Info("signed in", zap.String("email", id.Email))
	})
	defer unsubscribe()

	sess := session.New(passage.NewSourceWithRand(pool, rnd), session.Options{
		DurationSeconds: cfg.DurationSeconds,
		Identity:        ids,
		Logger:          logger,
	})
	gate := certificate.NewGate(st, certificate.WithLogger(logger))
	m := tui.NewModel(cfg, tui.Deps{
		Session:  sess,
		Gate:     gate,
		Results:  st,
		Identity: ids,
		Logger:   logger,
	})

	logger.Info("practice started",
		zap.String("lang", cfg.Lang),
		zap.Int("duration_seconds", cfg.DurationSeconds),
		zap.Int("passages", len(pool)))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadFileConfig reads the config file and fills profile flags from it.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "email", &profileEmail, fileCfg.Identity.Email)
	applyStringConfig(cmd, "name", &profileName, fileCfg.Identity.Name)
	if cmd.Flags().Lookup("passages") != nil {
		applyStringConfig(cmd, "passages", &practicePassages, fileCfg.Session.Passages)
		applyStringConfig(cmd, "wordlist", &practiceWordlist, fileCfg.Session.Wordlist)
		applyIntConfig(cmd, "passage-words", &practicePassageWords, fileCfg.Session.PassageWords)
	}
	return fileCfg, nil
}

func newRand() *rand.Rand {
	seed := practiceSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func loadPassagePool(cfg model.Config, rnd *rand.Rand) ([]model.Passage, error) {
	switch {
	case cfg.PassagesPath != "":
		pool, err := passage.LoadPool(cfg.PassagesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load passages from %s: %w", cfg.PassagesPath, err)
		}
		return pool, nil
	case cfg.WordListPath != "":
		words, err := passage.LoadWords(cfg.WordListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list from %s: %w", cfg.WordListPath, err)
		}
		return passage.Compose(rnd, words, passage.ComposedPoolSize, cfg.PassageWords), nil
	default:
		return passage.Builtin(), nil
	}
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

func newPassagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passages",
		Short: "List the passage pool",
		Args:  cobra.NoArgs,
		RunE:  runPassagesCmd,
	}
	addPassageFlags(cmd)
	return cmd
}

func runPassagesCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	cfg := model.Config{
		PassagesPath: practicePassages,
		WordListPath: practiceWordlist,
		PassageWords: practicePassageWords,
	}
	if cfg.WordListPath != "" && cfg.PassageWords <= 0 {
		return fmt.Errorf("--passage-words must be > 0")
	}
	pool, err := loadPassagePool(cfg, newRand())
	if err != nil {
		return err
	}
	src := passage.NewSource(pool)
	for i, p := range src.Pool() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, p.Text()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typecheck configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# lang = %q               # Language tag stored with results
# duration = %d             # Test length in seconds (60, 120, 300, 600, 1200 for exams)
# exam = ""                 # Exam name stored with results
# passages = ""             # File with one passage per line
# wordlist = ""             # Build passages from a word list instead
# passage-words = %d        # Words per passage built from the word list

[identity]
# email = ""                # Sign in; required for certificates
# name = ""                 # Display name
`,
		defaultLang,
		defaultDuration,
		defaultPassageWords,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.DurationSeconds <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.WordListPath != "" && cfg.PassageWords <= 0 {
		return fmt.Errorf("--passage-words must be > 0")
	}
	if cfg.PassagesPath != "" && cfg.WordListPath != "" {
		return fmt.Errorf("--passages and --wordlist are mutually exclusive")
	}
	return nil
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

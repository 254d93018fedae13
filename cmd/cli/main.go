package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"paxclean/adapters/excel"
	"paxclean/domain/run"
	"paxclean/internal/config"
	"paxclean/internal/container"
	"paxclean/internal/logging"
	"paxclean/internal/migration"
	"paxclean/internal/testkit"
	"paxclean/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// globals set up by the root command
var (
	appConfig *config.Config
	logger    *logrus.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		rulesFile string
		outputDir string
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:           "paxclean",
		Short:         "Clean, profile and summarize passenger manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("rules") {
				cfg.Pipeline.RulesFile = rulesFile
			}
			if flags.Changed("output-dir") {
				cfg.Pipeline.OutputDir = outputDir
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("log-format") {
				cfg.Logging.Format = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			appConfig = cfg
			logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rulesFile, "rules", "", "YAML rules file (defaults to the built-in rules)")
	pf.StringVar(&outputDir, "output-dir", "", "Directory or URL outputs are written to")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(
		newRunCmd(),
		newProfileCmd(),
		newGenerateCmd(),
		newMigrateCmd(),
		newServeCmd(),
	)

	return rootCmd
}

func newRunCmd() *cobra.Command {
	var (
		formats    []string
		parallel   int
		printJSON  bool
		noDatabase bool
	)

	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Run the full cleaning pipeline on a CSV or XLSX file",
		Long: `Run profiling, imputation, outlier detection and remediation, then write the
cleaned table and the run report (JSON, Markdown, HTML) under <output-dir>/<run id>/.

Example: paxclean run data/titanic.csv --format csv --format xlsx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := appConfig.Pipeline.Input
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" {
				return fmt.Errorf("no input file given (argument or PAXCLEAN_INPUT)")
			}
			if cmd.Flags().Changed("format") {
				appConfig.Pipeline.Formats = formats
			}
			if cmd.Flags().Changed("parallel") {
				appConfig.Pipeline.ParallelFields = parallel
			}
			if noDatabase {
				appConfig.Database.URL = ""
			}
			if err := appConfig.Validate(); err != nil {
				return err
			}

			c, err := container.Bootstrap(cmd.Context(), appConfig, logger)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			outcome, err := c.Cleaning.RunFile(cmd.Context(), input)
			if err != nil {
				return err
			}
			if printJSON {
				if err := printIndented(outcome.Report); err != nil {
					return err
				}
			} else {
				printRunSummary(outcome.Report, outcome.Files)
			}
			return outcome.RunErr
		},
	}

	cmd.Flags().StringSliceVar(&formats, "format", nil, "Cleaned table formats (csv, xlsx)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Fields detected concurrently (0 = all)")
	cmd.Flags().BoolVar(&printJSON, "json", false, "Print the full report as JSON")
	cmd.Flags().BoolVar(&noDatabase, "no-db", false, "Do not store the run even if DATABASE_URL is set")

	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [input]",
		Short: "Profile missingness, zeros and anomalies without cleaning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig.Database.URL = ""
			c, err := container.New(appConfig, logger)
			if err != nil {
				return err
			}
			profile, err := c.Cleaning.ProfileFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printIndented(profile)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	gen := testkit.DefaultPassengerConfig()

	cmd := &cobra.Command{
		Use:   "generate [output]",
		Short: "Write a synthetic passenger manifest for trying the pipeline",
		Long: `Generate a seeded synthetic passenger manifest with missing ages, noisy text,
zero fares and outliers.

Example: paxclean generate passengers.csv --rows 887 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := testkit.NewPassengerDataGenerator(gen).Generate()
			if err != nil {
				return err
			}
			if err := excel.NewDataWriter(logger).Write(cmd.Context(), t, args[0]); err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", t.Rows(), args[0])
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&gen.Rows, "rows", gen.Rows, "Number of passengers")
	f.Int64Var(&gen.Seed, "seed", gen.Seed, "Random seed")
	f.Float64Var(&gen.MissingAgeRate, "missing-age-rate", gen.MissingAgeRate, "Share of rows with a missing age")
	f.Float64Var(&gen.ZeroFareRate, "zero-fare-rate", gen.ZeroFareRate, "Share of rows with a zero fare")
	f.Float64Var(&gen.OutlierRate, "outlier-rate", gen.OutlierRate, "Share of rows with an extreme age or fare")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the pipeline_runs table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := container.OpenDatabase(cmd.Context(), appConfig.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("Database schema at version %s\n", migration.NewRunner().Version())
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				appConfig.Server.Port = port
			}
			gin.SetMode(appConfig.Server.GinMode)

			c, err := container.Bootstrap(cmd.Context(), appConfig, logger)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			server := ui.NewServer(c.Cleaning, c.RunRepo, appConfig.Server, logger)
			if err := server.Start(cmd.Context(), ":"+appConfig.Server.Port); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (defaults to PORT)")
	return cmd
}

func printRunSummary(r *run.Report, files []string) {
	fmt.Printf("Run:     %s\n", r.ID())
	fmt.Printf("Status:  %s (stage %s)\n", r.Status, r.Stage)
	if r.Failure != nil {
		fmt.Printf("Failure: %s\n", r.Failure.Error())
	}
	fmt.Printf("Rows:    %d\n", r.RowCount)
	for _, s := range r.Imputation {
		fmt.Printf("  imputed %-28s %d values\n", s.Rule, s.ImputedCount)
	}
	for _, s := range r.Remediation {
		fmt.Printf("  %-8s %-10s outliers %d -> %d\n", s.Policy, s.Field, s.PreCount, s.PostCount)
	}
	if len(r.Warnings) > 0 {
		fmt.Printf("Warnings (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  %s\n", w.String())
		}
	}
	for _, f := range files {
		fmt.Printf("Wrote %s\n", f)
	}
}

func printIndented(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

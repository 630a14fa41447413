package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/prodflow/catalog"
)

// Environment variables consulted when the matching flag is not given.
const (
	envOutput  = "PRODFLOW_OUTPUT"
	envVerbose = "PRODFLOW_VERBOSE"
	envCatalog = "PRODFLOW_CATALOG"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	verbosity    int
	outputFormat string
	catalogPath  string
	envFile      string

	logger   = logr.Discard()
	flushLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "prodflow",
	Short: "prodflow solves production graphs of recipes and balancers",
	Long: `prodflow builds a production graph from a scenario file, runs the
equilibrium solver after every edit, and prints machine counts and rates.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { flushLog() },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v solver passes, -vv every update)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputTable, "Output format: table or json")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Recipe catalog YAML (default: built-in catalog)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file with PRODFLOW_* defaults")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// setup loads the env file, applies env defaults to unset flags and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if err := godotenv.Load(envFile); err != nil {
		if flags.Changed("env") || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	if v := os.Getenv(envOutput); v != "" && !flags.Changed("output") {
		outputFormat = v
	}
	if v := os.Getenv(envCatalog); v != "" && !flags.Changed("catalog") {
		catalogPath = v
	}
	if v := os.Getenv(envVerbose); v != "" && !flags.Changed("verbose") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envVerbose, err)
		}
		verbosity = n
	}
	if outputFormat != outputTable && outputFormat != outputJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", outputFormat, outputTable, outputJSON)
	}

	l, flush, err := newLogger(verbosity)
	if err != nil {
		return err
	}
	logger, flushLog = l, flush

	return nil
}

// loadCatalog returns the catalog named by --catalog, or the built-in one.
func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(catalogPath)
}

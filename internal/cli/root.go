package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/medqa/internal/logging"
	"github.com/ppiankov/medqa/internal/model"
)

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "medqa",
	Short: "medqa - Vietnamese medical QA dataset builder",
	Long: `medqa builds true/false medical QA datasets from public health articles.

Stages:
  discover   enumerate article URLs from a site's index pages
  crawl      scrape articles into per-section records
  clean      normalize, filter and deduplicate records
  synth      generate true/false statements with a language model
  merge      merge QA files and drop exact duplicates
  train      split merged data and launch classifier training

Each stage reads and writes JSON Lines so any of them can be rerun alone.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for medqa.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("medqa v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.medqa/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.medqa")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match MEDQA_* (MEDQA_SYNTH_BATCH_SIZE -> synth.batch_size)
	viper.SetEnvPrefix("MEDQA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and MEDQA_* variables over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose && logLevel == "" {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the diagnostics logger; it always writes to stderr so
// stdout stays free for command output
func newLogger(cfg *model.Config) (zerolog.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}

// setup loads config and logger for a subcommand
func setup() (*model.Config, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// banner prints a section header in the batch report style
func banner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
}

// printCounter prints outcome tallies, accepted first then reasons sorted
func printCounter(c model.Counter) {
	fmt.Fprintf(os.Stderr, "  Accepted:  %d\n", c[model.SkipNone])
	reasons := make([]string, 0, len(c))
	for r := range c {
		if r != model.SkipNone {
			reasons = append(reasons, string(r))
		}
	}
	slices.Sort(reasons)
	for _, r := range reasons {
		fmt.Fprintf(os.Stderr, "  %-22s %d\n", r+":", c[model.SkipReason(r)])
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/distress/internal/analyzer"
	"github.com/ppiankov/distress/internal/classifier"
	"github.com/ppiankov/distress/internal/lexicon"
	"github.com/ppiankov/distress/internal/model"
	"github.com/ppiankov/distress/internal/trace"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	traceOn   bool
	provider  string
	modelName string
	noCache   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "distress",
	Short: "Distress - bankruptcy and distress language scoring for financial filings",
	Long: `Distress scores financial narrative text (10-K risk factors, MD&A, press
releases) for bankruptcy and distress sentiment.

Each sentence combines a sentence classifier with a domain risk lexicon,
numeric financial pattern rules and valence shifters (negation, hedging,
intensifiers). Sentence scores are aggregated into a document score, a
bankruptcy-risk indicator, complexity and readability metrics.

Scores measure distress language, not solvency.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return trace.Shutdown(ctx)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Distress.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("distress v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.distress/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&traceOn, "trace", false, "print OpenTelemetry spans to stderr")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "sentence classifier (finbert, openai, anthropic, ollama, wordlist, neutral)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "classifier model name")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable classifier result cache")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("trace"))
	_ = viper.BindPFlag("classifier.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("classifier.model", rootCmd.PersistentFlags().Lookup("model"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".distress"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(viper.GetViper(), model.DefaultConfig())

	// Read in environment variables that match DISTRESS_*, e.g. DISTRESS_CLASSIFIER_PROVIDER
	viper.SetEnvPrefix("DISTRESS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg as a viper default so environment
// variables can override keys absent from the config file
func setDefaults(v *viper.Viper, cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}

	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := val.(map[string]any); ok {
				walk(key, child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)

	// Keys omitted from the YAML when empty
	for _, key := range []string{
		"classifier.api_key", "classifier.base_url",
		"http.http_proxy", "http.https_proxy", "http.no_proxy",
		"lexicon.overrides_path",
	} {
		v.SetDefault(key, "")
	}
}

// loadConfig resolves the effective configuration: flags > env > file > defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(cfg)
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// applyProviderEnv fills the classifier key and base URL from the provider's
// conventional environment variables when not configured
func applyProviderEnv(cfg *model.Config) {
	c := &cfg.Classifier
	if c.APIKey == "" {
		switch strings.ToLower(c.Provider) {
		case "openai":
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "finbert":
			c.APIKey = os.Getenv("FINBERT_API_KEY")
		}
	}
	if c.BaseURL == "" && strings.EqualFold(c.Provider, "ollama") {
		c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
}

// newLogger builds the root logger from the logging section
func newLogger(cfg model.LoggingConfig) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}

// setup runs before every command: logging and tracing
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if verbose && !cmd.Flags().Changed("log-level") && viper.GetString("logging.level") == "info" {
		cfg.Logging.Level = "debug"
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	cmd.SetContext(logger.WithContext(cmd.Context()))

	if err := trace.Init(cfg.Tracing.Enabled, Version); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	return nil
}

// buildLexicon returns the built-in lexicon, merged with overrides when configured
func buildLexicon(ctx context.Context, cfg *model.Config) (*lexicon.Store, error) {
	if cfg.Lexicon.OverridesPath == "" {
		return lexicon.Default(), nil
	}
	o, err := lexicon.LoadOverrides(cfg.Lexicon.OverridesPath)
	if err != nil {
		return nil, err
	}
	return lexicon.New(ctx, o.Apply(lexicon.DefaultTables())), nil
}

// buildAnalyzer wires the classifier stack and lexicon into an Analyzer
func buildAnalyzer(ctx context.Context, cfg *model.Config) (*analyzer.Analyzer, *lexicon.Store, error) {
	store, err := buildLexicon(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	c, err := classifier.Build(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build classifier: %w", err)
	}

	a := analyzer.New(c, analyzer.Options{
		Lexicon:         store,
		SentenceWorkers: cfg.Concurrency.SentenceWorkers,
		BatchSize:       cfg.Classifier.BatchSize,
		MaxInputChars:   cfg.Classifier.MaxInputChars,
	})
	return a, store, nil
}

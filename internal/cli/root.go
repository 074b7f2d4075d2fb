package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthslies/internal/model"
	"github.com/ppiankov/truthslies/internal/telemetry"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	traceOn   bool
	stopTrace func(context.Context) error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthslies",
	Short: "Truths & Lies - a party game built from your own spreadsheet",
	Long: `truthslies reads rows from a Google Sheet or a local CSV/XLSX file,
asks a statement generation service for a mix of true and false
statements built from them, and lets players guess which is which.

The first row of the source names the template slots (by default
"date" and "time"); every following row is one candidate statement.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return startTracing(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if stopTrace == nil {
			return nil
		}
		return stopTrace(context.Background())
	},
}

// Execute runs the root command; interrupts cancel the command context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "truthslies %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthslies/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&traceOn, "trace", false, "print OpenTelemetry spans to stderr")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("telemetry.trace", rootCmd.PersistentFlags().Lookup("trace"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.truthslies")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// TRUTHSLIES_SOURCE_ID, TRUTHSLIES_SERVICE_ENDPOINT, ...
	viper.SetEnvPrefix("TRUTHSLIES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("source.api_key", "TRUTHSLIES_SOURCE_API_KEY", "GOOGLE_API_KEY")
	_ = viper.BindEnv("source.credentials_file", "TRUTHSLIES_SOURCE_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = viper.BindEnv("llm.api_key", "TRUTHSLIES_LLM_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("llm.base_url", "TRUTHSLIES_LLM_BASE_URL", "OLLAMA_BASE_URL")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every key of cfg known to v so env vars and
// flags can override nested settings.
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	// slots come from v as a whole list, never merged element-wise
	cfg.Template.Slots = nil
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Template.Slots) == 0 {
		cfg.Template.Slots = model.DefaultConfig().Template.Slots
	}
	return cfg, nil
}

func setupLogging() {
	level := slog.LevelWarn
	if viper.GetBool("output.verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func startTracing(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        viper.GetBool("telemetry.trace"),
		ServiceName:    viper.GetString("telemetry.service_name"),
		ServiceVersion: Version,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	stopTrace = shutdown
	return nil
}

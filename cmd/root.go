// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/observability"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

// NewRootCommand builds a fresh command tree. A new instance per
// invocation keeps flag state from leaking between interactive runs.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "webpilot",
		Short:   "webpilot turns natural-language prompts into browser automation.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(); err != nil {
				return err
			}
			var err error
			logger, err = observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the command tree with the given context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
			observability.Sync(logger)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	if logger != nil {
		observability.Sync(logger)
	}
	return nil
}

// initializeConfig reads the config file and environment, then builds the
// validated configuration.
func initializeConfig() error {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("WEBPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and env vars.
	}

	var err error
	cfg, err = config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	return nil
}

// requireAPIKey fails early for commands that reach the interpreter.
func requireAPIKey() error {
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("OpenRouter API key is required (set OPENROUTER_API_KEY or llm.api_key)")
	}
	return nil
}

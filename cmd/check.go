// -- cmd/check.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/internal/interpreter"
)

const checkPrompt = "Navigate to google.com"

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify connectivity to the language model.",
		Long: `Check sends a single test prompt through the interpreter and reports
whether a usable action plan came back. No browser actions are executed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(); err != nil {
				return err
			}

			assistant, err := interpreter.NewAssistant(cfg.LLM, logger)
			if err != nil {
				return err
			}

			logger.Info("Checking interpreter connectivity",
				zap.String("model", cfg.LLM.Model),
				zap.String("endpoint", cfg.LLM.Endpoint),
			)

			plan, err := assistant.Interpret(cmd.Context(), checkPrompt)
			if err != nil {
				if malformed, ok := interpreter.AsMalformedOutput(err); ok {
					return fmt.Errorf("model responded but the output was not a valid plan: %q", malformed.Raw)
				}
				return fmt.Errorf("interpreter check failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s✓ interpreter reachable%s (model %s, %d planned action(s))\n",
				colorGreen, colorReset, cfg.LLM.Model, len(plan.Actions))
			return nil
		},
	}
}

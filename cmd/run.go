// -- cmd/run.go --
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webpilot-ai/webpilot/api/schemas"
	"github.com/webpilot-ai/webpilot/internal/interpreter"
	"github.com/webpilot-ai/webpilot/internal/orchestrator"
	"github.com/webpilot-ai/webpilot/internal/protocol"
)

const (
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorReset  = "\033[0m"
)

func newRunCommand() *cobra.Command {
	var (
		prompt       string
		interactive  bool
		noScreenshot bool
		verbose      bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a natural-language automation prompt.",
		Long: `Run interprets a natural-language prompt into browser actions and
executes them against the configured Playwright action server.

Examples:
  webpilot run --prompt "Go to google.com and search for golang"
  webpilot run --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAPIKey(); err != nil {
				return err
			}
			if !interactive && strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("either --prompt or --interactive is required")
			}

			orch, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer orch.Close()

			if interactive {
				return runInteractive(cmd.Context(), orch, !noScreenshot, verbose)
			}
			report := orch.ExecutePrompt(cmd.Context(), prompt, !noScreenshot)
			printReport(cmd.OutOrStdout(), report, verbose)
			if !report.OverallSuccess {
				return fmt.Errorf("automation did not complete successfully")
			}
			return nil
		},
	}

	runCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "natural-language prompt to execute")
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start an interactive prompt session")
	runCmd.Flags().BoolVar(&noScreenshot, "no-screenshot", false, "skip the final screenshot capture")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print per-action parameters and raw outcomes")
	return runCmd
}

func buildOrchestrator() (*orchestrator.Orchestrator, error) {
	assistant, err := interpreter.NewAssistant(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	client := protocol.NewClient(cfg.Playwright, logger)
	return orchestrator.New(assistant, client, cfg.Playwright.ActionDelay, logger)
}

func runInteractive(ctx context.Context, orch *orchestrator.Orchestrator, screenshot bool, verbose bool) error {
	out := os.Stdout
	fmt.Fprintf(out, "%swebpilot interactive mode%s\n", colorCyan, colorReset)
	fmt.Fprintln(out, "Type a prompt and press Enter. Commands: help, screenshot, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye.")
			return nil
		case "help":
			fmt.Fprintln(out, "Enter any natural-language prompt to run it.")
			fmt.Fprintln(out, "  help        show this message")
			fmt.Fprintln(out, "  screenshot  toggle the final screenshot (currently", onOff(screenshot)+")")
			fmt.Fprintln(out, "  quit        leave interactive mode")
			continue
		case "screenshot":
			screenshot = !screenshot
			fmt.Fprintln(out, "Final screenshot is now", onOff(screenshot))
			continue
		}

		report := orch.ExecutePrompt(ctx, line, screenshot)
		printReport(out, report, verbose)
	}
}

// screenshotDetail extracts the human-readable part of a capture outcome.
// The automation server reports the written file under "path"; older
// builds return a "message" instead.
func screenshotDetail(outcome schemas.ActionOutcome) string {
	if path, ok := outcome["path"].(string); ok && path != "" {
		return path
	}
	if msg, ok := outcome["message"].(string); ok && msg != "" {
		return msg
	}
	return "captured"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printReport(w io.Writer, report *schemas.ExecutionReport, verbose bool) {
	if report.Error != "" {
		fmt.Fprintf(w, "%s✗ %s%s\n", colorRed, report.Error, colorReset)
		if report.RawResponse != "" && verbose {
			fmt.Fprintf(w, "  raw model output: %s\n", report.RawResponse)
		}
		return
	}

	if report.Interpretation != nil && report.Interpretation.Explanation != "" {
		fmt.Fprintf(w, "%sPlan:%s %s\n", colorCyan, colorReset, report.Interpretation.Explanation)
	}

	for _, result := range report.ExecutionResults {
		mark, color := "✓", colorGreen
		if !result.Success {
			mark, color = "✗", colorRed
		}
		fmt.Fprintf(w, "%s%s %s%s: %s\n", color, mark, result.Action, colorReset, result.Description)
		if verbose {
			fmt.Fprintf(w, "    params: %v\n", result.Params)
			fmt.Fprintf(w, "    result: %v\n", result.Result)
		} else if msg, failed := result.Result.ErrorMessage(); failed {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}

	if report.ScreenshotSaved {
		fmt.Fprintf(w, "%sScreenshot saved:%s %s\n", colorYellow, colorReset, screenshotDetail(report.FinalScreenshot))
	}
	if report.OverallSuccess {
		fmt.Fprintf(w, "%sAutomation completed successfully.%s\n", colorGreen, colorReset)
	} else {
		fmt.Fprintf(w, "%sAutomation finished with failures.%s\n", colorRed, colorReset)
	}
}

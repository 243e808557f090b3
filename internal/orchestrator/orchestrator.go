// File: internal/orchestrator/orchestrator.go
// Description: Sequences an interpreted plan through the protocol client
// with stop-on-failure semantics, appends the best-effort final
// screenshot, and assembles the execution report.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/api/schemas"
	"github.com/webpilot-ai/webpilot/internal/interpreter"
)

// finalScreenshotDescription labels the appended capture step.
const finalScreenshotDescription = "Capture final automation result"

// Orchestrator runs one prompt end to end. Plan steps execute strictly
// sequentially; browser actions are stateful and order-dependent.
type Orchestrator struct {
	assistant schemas.Interpreter
	client    schemas.ActionClient
	// actionDelay is the settle pause between consecutive plan steps.
	actionDelay time.Duration
	logger      *zap.Logger
}

// New creates an Orchestrator with its dependencies provided as interfaces.
func New(assistant schemas.Interpreter, client schemas.ActionClient, actionDelay time.Duration, logger *zap.Logger) (*Orchestrator, error) {
	if assistant == nil || client == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	return &Orchestrator{
		assistant:   assistant,
		client:      client,
		actionDelay: actionDelay,
		logger:      logger.Named("orchestrator"),
	}, nil
}

// ExecutePrompt interprets and runs a user prompt, returning the full
// execution report.
//
// Failure containment: an interpretation error produces a whole-report
// failure with no actions attempted. An unknown or failing action stops
// the remaining plan steps (fail-fast), but the final screenshot is still
// attempted so operators retain visual evidence of the failure point; its
// outcome never affects overall success.
func (o *Orchestrator) ExecutePrompt(ctx context.Context, prompt string, captureFinalScreenshot bool) *schemas.ExecutionReport {
	o.logger.Info("Processing user prompt", zap.String("prompt", prompt))

	plan, err := o.assistant.Interpret(ctx, prompt)
	if err != nil {
		return interpretationFailureReport(prompt, err)
	}

	results := o.runPlan(ctx, plan)

	report := &schemas.ExecutionReport{
		UserPrompt:       prompt,
		Interpretation:   plan,
		ExecutionResults: results,
	}

	if captureFinalScreenshot {
		o.captureFinalScreenshot(ctx, report)
	}

	report.OverallSuccess = overallSuccess(report.ExecutionResults)
	return report
}

// runPlan executes plan steps in order until one fails or is unknown.
func (o *Orchestrator) runPlan(ctx context.Context, plan *schemas.InterpretationPlan) []schemas.ActionResult {
	results := make([]schemas.ActionResult, 0, len(plan.Actions))

	for _, step := range plan.Actions {
		o.logger.Info("Executing action",
			zap.String("action", step.Action),
			zap.String("description", step.Description))

		handler, known := supportedActions[step.Action]
		if !known {
			results = append(results, failedResult(step, fmt.Sprintf("unknown action: %s", step.Action)))
			o.logger.Warn("Plan referenced unknown action, stopping", zap.String("action", step.Action))
			break
		}

		outcome := o.dispatch(ctx, handler, step)
		result := schemas.ActionResult{
			Action:      step.Action,
			Params:      step.Params,
			Description: step.Description,
			Result:      outcome,
			Success:     !outcome.Failed(),
		}
		results = append(results, result)

		if !result.Success {
			msg, _ := outcome.ErrorMessage()
			o.logger.Warn("Action failed, stopping remaining plan steps",
				zap.String("action", step.Action),
				zap.String("reason", msg))
			break
		}

		// Give the remote browser session time to settle before the next
		// action. A stability heuristic, not a correctness guarantee.
		o.sleep(ctx)
	}

	return results
}

// dispatch invokes the handler, containing panics as failed outcomes so a
// misbehaving step is recorded and stops the plan rather than unwinding
// the whole execution.
func (o *Orchestrator) dispatch(ctx context.Context, handler actionHandler, step schemas.PlannedAction) (outcome schemas.ActionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Action handler panicked", zap.String("action", step.Action), zap.Any("panic", r))
			outcome = schemas.FailedOutcome(fmt.Sprintf("action %s panicked: %v", step.Action, r))
		}
	}()
	return handler(ctx, o.client, step.Params)
}

// captureFinalScreenshot appends the best-effort capture entry and fills
// the report's screenshot fields. Runs even after a fail-fast stop.
func (o *Orchestrator) captureFinalScreenshot(ctx context.Context, report *schemas.ExecutionReport) {
	o.logger.Info("Taking final screenshot")
	outcome := o.client.TakeScreenshot(ctx, "")

	success := !outcome.Failed()
	report.ExecutionResults = append(report.ExecutionResults, schemas.ActionResult{
		Action:      ActionTakeScreenshot,
		Params:      map[string]any{},
		Description: finalScreenshotDescription,
		Result:      outcome,
		Success:     success,
	})

	if success {
		report.FinalScreenshot = outcome
		report.ScreenshotSaved = true
	} else {
		msg, _ := outcome.ErrorMessage()
		o.logger.Error("Failed to take final screenshot", zap.String("reason", msg))
	}
}

// sleep blocks for the inter-action delay, honoring context cancellation.
func (o *Orchestrator) sleep(ctx context.Context) {
	if o.actionDelay <= 0 {
		return
	}
	timer := time.NewTimer(o.actionDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Close releases the protocol client's connection resources.
func (o *Orchestrator) Close() {
	o.client.Close()
}

// interpretationFailureReport builds the early whole-report failure for a
// prompt whose interpretation failed. No actions were attempted, so the
// results sequence is empty and no screenshot is taken.
func interpretationFailureReport(prompt string, err error) *schemas.ExecutionReport {
	report := &schemas.ExecutionReport{
		UserPrompt:       prompt,
		ExecutionResults: []schemas.ActionResult{},
		Error:            fmt.Sprintf("failed to interpret prompt: %v", err),
	}
	if malformed, ok := interpreter.AsMalformedOutput(err); ok {
		report.RawResponse = malformed.Raw
	}
	return report
}

// overallSuccess is the conjunction of success over all non-screenshot
// results. Every screenshot result is excluded, plan-level steps included;
// captures are evidence, not goals. A plan with zero actions is vacuously
// successful.
func overallSuccess(results []schemas.ActionResult) bool {
	for _, r := range results {
		if r.Action == ActionTakeScreenshot {
			continue
		}
		if !r.Success {
			return false
		}
	}
	return true
}

func failedResult(step schemas.PlannedAction, msg string) schemas.ActionResult {
	return schemas.ActionResult{
		Action:      step.Action,
		Params:      step.Params,
		Description: step.Description,
		Result:      schemas.FailedOutcome(msg),
		Success:     false,
	}
}

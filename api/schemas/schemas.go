// File: api/schemas/schemas.go
// Shared data model for the automation pipeline: protocol messages,
// interpreted plans, execution reports and registry records.
package schemas

import (
	"fmt"
	"time"
)

// ActionRequest is a single outbound call to the automation server.
// The wire body is {id, method, params}; the timestamp is local bookkeeping.
// Requests are immutable once sent and their ids are monotonic within a
// client session.
type ActionRequest struct {
	ID        string         `json:"id"`
	Method    string         `json:"method"`
	Params    map[string]any `json:"params"`
	Timestamp time.Time      `json:"-"`
}

// ActionOutcome is the deserialized response body of one protocol call.
// The automation server reports failure in-band via an "error" field rather
// than transport-level errors, so callers must check Failed(), not rely on
// Go errors.
type ActionOutcome map[string]any

// ErrorMessage returns the error marker carried by the outcome, if any.
// Presence of the key is the failure signal; non-string values are
// stringified so the marker is never silently dropped.
func (o ActionOutcome) ErrorMessage() (string, bool) {
	v, ok := o["error"]
	if !ok {
		return "", false
	}
	if msg, ok := v.(string); ok {
		return msg, true
	}
	return fmt.Sprintf("%v", v), true
}

// Failed reports whether the outcome carries an error marker.
func (o ActionOutcome) Failed() bool {
	_, failed := o.ErrorMessage()
	return failed
}

// FailedOutcome builds an outcome carrying only an error marker.
func FailedOutcome(msg string) ActionOutcome {
	return ActionOutcome{"error": msg}
}

// ActionResult records one executed action. Results are appended in
// execution order and never mutated afterwards.
type ActionResult struct {
	Action      string         `json:"action"`
	Params      map[string]any `json:"params"`
	Description string         `json:"description"`
	Result      ActionOutcome  `json:"result"`
	Success     bool           `json:"success"`
}

// PlannedAction is one step of an interpretation plan as proposed by the
// language model. An unrecognized Action name is passed through unresolved
// and becomes an execution error downstream.
type PlannedAction struct {
	Action      string         `json:"action"`
	Params      map[string]any `json:"params"`
	Description string         `json:"description"`
}

// InterpretationPlan is the structured output of the Intent Interpreter.
// An empty Actions slice is valid and yields a report with zero execution
// steps. The plan is read-only input to the orchestrator.
type InterpretationPlan struct {
	Actions     []PlannedAction `json:"actions"`
	Explanation string          `json:"explanation"`
}

// ExecutionReport is the full record of one prompt's interpretation and
// run. Assembled once by the orchestrator and immutable afterwards.
//
// OverallSuccess is the conjunction of Success over all results whose
// action is not the screenshot action; the final screenshot is best-effort
// evidence and excluded from the aggregate by construction.
type ExecutionReport struct {
	UserPrompt       string              `json:"user_prompt"`
	Interpretation   *InterpretationPlan `json:"interpretation,omitempty"`
	ExecutionResults []ActionResult      `json:"execution_results"`
	OverallSuccess   bool                `json:"overall_success"`
	FinalScreenshot  ActionOutcome       `json:"final_screenshot,omitempty"`
	ScreenshotSaved  bool                `json:"screenshot_saved"`
	// Error and RawResponse are set only when interpretation failed before
	// any action was attempted.
	Error       string `json:"error,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
}

// ExecutionStatus is the lifecycle state of a registry record.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s ExecutionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ExecutionRecord tracks one asynchronous submission. A record is created
// in the running state and mutated exactly once, by the background task
// that owns it, to a terminal state.
type ExecutionRecord struct {
	ID             string           `json:"id"`
	Prompt         string           `json:"prompt"`
	Status         ExecutionStatus  `json:"status"`
	SaveScreenshot bool             `json:"save_screenshot"`
	StartedAt      time.Time        `json:"start_time"`
	FinishedAt     *time.Time       `json:"end_time,omitempty"`
	Report         *ExecutionReport `json:"result,omitempty"`
	Error          string           `json:"error,omitempty"`
	Success        bool             `json:"success"`
}

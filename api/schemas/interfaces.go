// File: api/schemas/interfaces.go
// Component contracts. Keeping these in the schemas package lets the
// orchestrator, registry and server depend on each other through
// interfaces without import cycles.
package schemas

import "context"

// Interpreter converts a free-text prompt into a validated action plan.
//
// A failed language-model call or unparseable output is returned as an
// error; implementations wrap unparseable output in a typed error carrying
// the raw model text for diagnostics.
type Interpreter interface {
	Interpret(ctx context.Context, userPrompt string) (*InterpretationPlan, error)
}

// ActionClient issues browser actions against the remote automation
// server. Every method is a single attempt with a bounded timeout; remote
// failures come back as outcomes carrying an error marker, never as Go
// errors. Retries, if any, belong to the caller.
type ActionClient interface {
	Send(ctx context.Context, method string, params map[string]any) ActionOutcome

	Navigate(ctx context.Context, url string) ActionOutcome
	Click(ctx context.Context, selector string, timeoutMs int) ActionOutcome
	TypeText(ctx context.Context, selector, text string) ActionOutcome
	GetText(ctx context.Context, selector string) ActionOutcome
	WaitForElement(ctx context.Context, selector string, timeoutMs int) ActionOutcome
	WaitForNavigation(ctx context.Context, timeoutMs int) ActionOutcome
	WaitForSearchResults(ctx context.Context, timeoutMs int) ActionOutcome
	SmartWait(ctx context.Context, timeoutMs int) ActionOutcome
	PressKey(ctx context.Context, key string) ActionOutcome
	TakeScreenshot(ctx context.Context, path string) ActionOutcome
	DebugPage(ctx context.Context) ActionOutcome

	// Close releases the client's connection resources. The client is
	// scoped to one orchestrator instance.
	Close()
}

// PromptExecutor runs one prompt end to end and assembles its report.
type PromptExecutor interface {
	ExecutePrompt(ctx context.Context, prompt string, captureFinalScreenshot bool) *ExecutionReport
}

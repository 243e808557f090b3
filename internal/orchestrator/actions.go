// File: internal/orchestrator/actions.go
// Description: The fixed dispatch table of supported plan actions. Each
// entry shapes the planner-provided parameters into one typed protocol
// call; resolution fails explicitly for unrecognized action names.
package orchestrator

import (
	"context"

	"github.com/webpilot-ai/webpilot/api/schemas"
)

// ActionTakeScreenshot is the one action excluded from the overall-success
// aggregate when recorded as the final capture.
const ActionTakeScreenshot = "take_screenshot"

// actionHandler executes one planned action against the protocol client.
type actionHandler func(ctx context.Context, client schemas.ActionClient, params map[string]any) schemas.ActionOutcome

// supportedActions maps plan action names onto protocol calls. The set is
// fixed; plans referencing anything else fail with an unknown-action error.
var supportedActions = map[string]actionHandler{
	"navigate_to_page": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.Navigate(ctx, stringParam(p, "url"))
	},
	"click_element": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.Click(ctx, stringParam(p, "selector"), intParam(p, "timeout"))
	},
	"type_text": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.TypeText(ctx, stringParam(p, "selector"), stringParam(p, "text"))
	},
	"get_text": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.GetText(ctx, stringParam(p, "selector"))
	},
	"wait_for_element": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.WaitForElement(ctx, stringParam(p, "selector"), intParam(p, "timeout"))
	},
	"wait_for_navigation": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.WaitForNavigation(ctx, intParam(p, "timeout"))
	},
	"wait_for_search_results": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.WaitForSearchResults(ctx, intParam(p, "timeout"))
	},
	"smart_wait": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.SmartWait(ctx, intParam(p, "timeout"))
	},
	"press_key": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.PressKey(ctx, stringParam(p, "key"))
	},
	ActionTakeScreenshot: func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.TakeScreenshot(ctx, stringParam(p, "path"))
	},
	"debug_page": func(ctx context.Context, c schemas.ActionClient, p map[string]any) schemas.ActionOutcome {
		return c.DebugPage(ctx)
	},
}

// stringParam reads a string parameter, returning "" when absent or of the
// wrong type. The protocol server rejects what it cannot use; nothing is
// guessed on this side.
func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// intParam reads an integer parameter. JSON decoding yields float64 for
// every number, so both forms are accepted. Returns 0 when absent, which
// the client wrappers replace with their defaults.
func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// -- cmd/run_test.go --
package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webpilot-ai/webpilot/api/schemas"
)

func TestPrintReport_ScreenshotLineShowsPath(t *testing.T) {
	report := &schemas.ExecutionReport{
		UserPrompt:       "go somewhere",
		ExecutionResults: []schemas.ActionResult{},
		OverallSuccess:   true,
		ScreenshotSaved:  true,
		FinalScreenshot:  schemas.ActionOutcome{"success": true, "path": "automation_result_20260828_120000.png"},
	}

	var out bytes.Buffer
	printReport(&out, report, false)

	assert.Contains(t, out.String(), "Screenshot saved:")
	assert.Contains(t, out.String(), "automation_result_20260828_120000.png")
	// The raw outcome map never leaks into the output.
	assert.NotContains(t, out.String(), "map[")
}

func TestScreenshotDetail(t *testing.T) {
	assert.Equal(t, "shot.png",
		screenshotDetail(schemas.ActionOutcome{"path": "shot.png", "message": "saved"}))
	assert.Equal(t, "saved to disk",
		screenshotDetail(schemas.ActionOutcome{"message": "saved to disk"}))
	assert.Equal(t, "captured",
		screenshotDetail(schemas.ActionOutcome{"success": true}))
}

func TestPrintReport_FailureLineShowsError(t *testing.T) {
	report := &schemas.ExecutionReport{
		UserPrompt: "click a ghost",
		ExecutionResults: []schemas.ActionResult{
			{
				Action:      "click_element",
				Description: "Click the login button",
				Result:      schemas.FailedOutcome("selector not found"),
				Success:     false,
			},
		},
	}

	var out bytes.Buffer
	printReport(&out, report, false)

	assert.Contains(t, out.String(), "click_element")
	assert.Contains(t, out.String(), "selector not found")
	assert.Contains(t, out.String(), "finished with failures")
}

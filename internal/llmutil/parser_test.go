// File: internal/llmutil/parser_test.go
package llmutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPlan struct {
	Actions []struct {
		Action string `json:"action"`
	} `json:"actions"`
	Explanation string `json:"explanation"`
}

func TestParseJSONObject_StrictParse(t *testing.T) {
	raw := `{"actions": [{"action": "navigate_to_page"}], "explanation": "go there"}`

	plan, err := ParseJSONObject[testPlan](raw)
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "navigate_to_page", plan.Actions[0].Action)
	assert.Equal(t, "go there", plan.Explanation)
}

func TestParseJSONObject_SalvagesMarkdownFence(t *testing.T) {
	raw := "Sure, here is the plan:\n```json\n{\"actions\": [], \"explanation\": \"nothing to do\"}\n```\nLet me know if you need more."

	plan, err := ParseJSONObject[testPlan](raw)
	require.NoError(t, err)
	assert.Empty(t, plan.Actions)
	assert.Equal(t, "nothing to do", plan.Explanation)
}

func TestParseJSONObject_SalvagesBareFence(t *testing.T) {
	raw := "```\n{\"explanation\": \"fenced without a language tag\"}\n```"

	plan, err := ParseJSONObject[testPlan](raw)
	require.NoError(t, err)
	assert.Equal(t, "fenced without a language tag", plan.Explanation)
}

func TestParseJSONObject_SalvagesBraceSubstring(t *testing.T) {
	raw := `The plan you asked for is {"actions": [], "explanation": "embedded"} and that should work.`

	plan, err := ParseJSONObject[testPlan](raw)
	require.NoError(t, err)
	assert.Equal(t, "embedded", plan.Explanation)
}

func TestParseJSONObject_NoObjectPresent(t *testing.T) {
	_, err := ParseJSONObject[testPlan]("I cannot help with that request.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object found")
}

func TestParseJSONObject_SalvagedCandidateStillInvalid(t *testing.T) {
	_, err := ParseJSONObject[testPlan](`prefix {"actions": [unquoted]} suffix`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal salvaged JSON")
}

func TestParseJSONObject_EmptyInput(t *testing.T) {
	_, err := ParseJSONObject[testPlan]("")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abcde...", Truncate("abcdefghij", 5))
	assert.Equal(t, "", Truncate("abc", 0))
}

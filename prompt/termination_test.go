package prompt

import (
	"testing"

	"github.com/hupe1980/agora/core"
	"github.com/stretchr/testify/assert"
)

func TestParseTermination(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantFlag    bool
		wantMessage string
	}{
		{
			"plain directive",
			`{"terminate": true, "message": "We are done."}`,
			true, "We are done.",
		},
		{
			"not terminating",
			`{"terminate": false, "message": "Keep going."}`,
			false, "Keep going.",
		},
		{
			"fenced json",
			"```json\n{\"terminate\": true, \"message\": \"Wrapped.\"}\n```",
			true, "Wrapped.",
		},
		{
			"directive embedded in prose",
			"Here is my verdict: {\"terminate\": true, \"message\": \"Concluded.\"}",
			true, "Concluded.",
		},
		{
			"free text is not an error",
			"The debate continues, no consensus yet.",
			false, "The debate continues, no consensus yet.",
		},
		{
			"malformed json falls back to text",
			`{"terminate": tru`,
			false, `{"terminate": tru`,
		},
		{
			"non-string message falls back to text",
			`{"terminate": true, "message": 42}`,
			true, `{"terminate": true, "message": 42}`,
		},
		{
			"missing message falls back to text",
			`{"terminate": true}`,
			true, `{"terminate": true}`,
		},
		{"empty input", "   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag, message := ParseTermination(tt.input)
			assert.Equal(t, tt.wantFlag, flag)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestAppendContract(t *testing.T) {
	got := AppendContract("Watch the clock.", core.RoleModerator, false)
	assert.Contains(t, got, "Watch the clock.")
	assert.Contains(t, got, "You are a debate moderator.")
	assert.Contains(t, got, `{"terminate": false, "message": "<your text>"}`)
	assert.Contains(t, got, "conclude early")
	assert.NotContains(t, got, "The discussion is now complete.")

	got = AppendContract("", core.RoleSynthesizer, true)
	assert.Contains(t, got, "You are the collaboration lead.")
	assert.Contains(t, got, "The discussion is now complete.")
	assert.Contains(t, got, "Set terminate=true.")
}

func TestStripLeadingName(t *testing.T) {
	assert.Equal(t, "hello there", StripLeadingName("Ada: hello there", "Ada"))
	assert.Equal(t, "hello", StripLeadingName("Dr. Who (2): hello", "Dr. Who (2)"))
	assert.Equal(t, "no prefix here", StripLeadingName("no prefix here", "Ada"))
	// Only the leading occurrence is stripped.
	assert.Equal(t, "quoting Ada: sure", StripLeadingName("quoting Ada: sure", "Ada"))
}

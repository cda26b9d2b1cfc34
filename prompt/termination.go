package prompt

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/hupe1980/agora/core"
)

var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// terminationPayload is the structured directive an auxiliary may embed in
// its output.
type terminationPayload struct {
	Terminate bool            `json:"terminate"`
	Message   json.RawMessage `json:"message"`
}

// ParseTermination inspects auxiliary output for a directive of the form
// {"terminate": true/false, "message": "..."}. Optional code fences and
// surrounding prose are tolerated. The output is untrusted text: anything
// that fails to parse means "no termination requested" and the original
// text is returned as the message.
func ParseTermination(text string) (bool, string) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return false, ""
	}
	fallback := raw

	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimSpace(strings.Trim(raw, "`"))
		// A fence label like "json" may remain on the first line.
		if i := strings.IndexByte(raw, '\n'); i >= 0 && !strings.ContainsAny(raw[:i], "{}") {
			raw = strings.TrimSpace(raw[i:])
		}
	}

	block := jsonBlockRe.FindString(raw)
	if block == "" {
		return false, fallback
	}

	var payload terminationPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return false, fallback
	}

	var message string
	if err := json.Unmarshal(payload.Message, &message); err != nil {
		message = fallback
	}
	return payload.Terminate, strings.TrimSpace(message)
}

// DefaultAuxiliaryInstructions is the base prompt used when a run's
// auxiliary spec carries no custom instruction text.
func DefaultAuxiliaryInstructions(role core.Role) string {
	if role == core.RoleSynthesizer {
		return "Summarize progress, merge duplicates, and list next steps using only what participants already said."
	}
	return "Summarize the debate neutrally and suggest the next focus/questions."
}

// AppendContract appends the JSON output contract to an auxiliary's
// instructions. The contract is a backend implementation detail: it is
// attached regardless of what the configured instructions contain, so the
// runner can always probe for the termination directive. finalCall switches
// the wording from "may conclude early" to "must conclude now".
func AppendContract(base string, role core.Role, finalCall bool) string {
	var heading, bullets string
	if role == core.RoleSynthesizer {
		heading = "You are the collaboration lead."
		bullets = "- Summarize progress so far (brief)\n" +
			"- Merge duplicates / reconcile overlaps\n" +
			"- List concrete next steps"
	} else {
		heading = "You are a debate moderator."
		bullets = "- Briefly summarize the debate so far (neutral)\n" +
			"- Merge duplicates / reconcile overlaps\n" +
			"- Suggest next focus / questions to resolve"
	}

	closing := "If you have enough information to conclude early, set terminate=true and provide the concluding summary.\n"
	if finalCall {
		closing = "The discussion is now complete. Provide the closing synthesis/summary now.\nSet terminate=true.\n"
	}

	contract := strings.TrimSpace(heading + "\n" +
		"Do NOT introduce new ideas.\n\n" +
		"Output MUST be valid JSON:\n" +
		`{"terminate": false, "message": "<your text>"}` + "\n\n" +
		"In your message:\n" + bullets + "\n\n" + closing)

	base = strings.TrimSpace(base)
	if base == "" {
		return contract
	}
	return base + "\n\n" + contract
}

// StripLeadingName removes a leading "<name>: " echo from final content.
// Models occasionally prefix their own display name; the transcript should
// carry the content only. Names with spaces or special characters are
// handled.
func StripLeadingName(content, name string) string {
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(name) + `\s*:\s*`)
	if err != nil {
		return content
	}
	return re.ReplaceAllString(content, "")
}

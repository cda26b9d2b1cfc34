package core

// Content is a single role-tagged block of prompt text. The prompt builder
// emits an ordered slice of these; provider adapters translate the roles
// into their native message formats.
type Content struct {
	Role string `json:"role"` // "system", "user" or "assistant"
	Text string `json:"text"`
}

// SystemContent returns a system-role content block.
func SystemContent(text string) Content { return Content{Role: "system", Text: text} }

// UserContent returns a user-role content block.
func UserContent(text string) Content { return Content{Role: "user", Text: text} }

// AssistantContent returns an assistant-role content block.
func AssistantContent(text string) Content { return Content{Role: "assistant", Text: text} }

package ai

// Chat message roles understood by the upstream provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of the ordered message list sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a conversational request to the streaming model endpoint.
type ChatRequest struct {
	// Messages is the ordered message list, system prompt first.
	Messages []ChatMessage

	// MaxOutputTokens caps the model's output. Zero means the provider default.
	MaxOutputTokens int

	// Model overrides the configured chat model when non-empty. The
	// generation stage uses this to route to the larger generation model.
	Model string
}

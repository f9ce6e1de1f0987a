package ports

import "context"

// OracleMessage is one turn of a conversation with the text-generation
// oracle. Content is either a plain string or a list of content blocks
// (text or base64 document payloads), mirroring the wire format.
type OracleMessage struct {
	Role    string      `json:"role"` // "user" or "assistant"
	Content interface{} `json:"content"`
}

// TextBlock is a plain text content block.
type TextBlock struct {
	Type string `json:"type"` // always "text"
	Text string `json:"text"`
}

// DocumentBlock embeds a base64 document payload in a message.
type DocumentBlock struct {
	Type   string         `json:"type"` // always "document"
	Source DocumentSource `json:"source"`
}

// DocumentSource is the base64 payload of a DocumentBlock.
type DocumentSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// OracleRequest is a conversation-style completion request.
type OracleRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []OracleMessage `json:"messages"`
}

// OracleError carries the upstream status and detail of a failed oracle
// call, so the proxy can map it to {status, error, details}.
type OracleError struct {
	Status  int
	Message string
	Details map[string]interface{}
}

func (e *OracleError) Error() string {
	return e.Message
}

// TextOracle is the opaque text-generation service used for scenario
// generation, evaluation and document analysis.
type TextOracle interface {
	// Complete sends a conversation and returns the concatenated text of
	// the oracle's final assistant turn.
	Complete(ctx context.Context, req OracleRequest) (string, error)
	// Forward sends a raw request body and returns the oracle's response
	// verbatim, for the pass-through proxy endpoint.
	Forward(ctx context.Context, body []byte) ([]byte, error)
}

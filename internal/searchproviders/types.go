package searchproviders

import (
	"fmt"
	"strings"

	"github.com/memohai/websearch-mcp/internal/prune"
)

// maxErrorDetailBytes bounds how much of an upstream error body is surfaced.
const maxErrorDetailBytes = 200

// ProviderName is the closed set of upstream search providers.
type ProviderName string

const (
	ProviderTavily ProviderName = "tavily"
	ProviderSerper ProviderName = "serper"
)

const (
	DefaultProvider   = ProviderSerper
	DefaultMaxResults = 5

	MsgUnsupportedProvider = "Unsupported provider. Use 'serper' or 'tavily'."
)

// ParseProviderName matches raw case-insensitively. Whitespace is significant:
// ok is false for anything outside the enumeration, padded names included.
func ParseProviderName(raw string) (ProviderName, bool) {
	switch name := ProviderName(strings.ToLower(raw)); name {
	case ProviderTavily, ProviderSerper:
		return name, true
	default:
		return "", false
	}
}

// ProviderMeta describes a provider for tool schemas and diagnostics.
type ProviderMeta struct {
	Provider      string `json:"provider"`
	DisplayName   string `json:"display_name"`
	CredentialEnv string `json:"credential_env"`
	Endpoint      string `json:"endpoint"`
	Configured    bool   `json:"configured"`
}

// SearchRequest is the caller-facing search shape. Country is sent to
// providers that accept a region, as null when unset.
type SearchRequest struct {
	Query      string  `json:"query" validate:"required"`
	Country    *string `json:"country"`
	MaxResults int     `json:"max_results" validate:"min=1"`
	Provider   string  `json:"provider"`
}

// HTTPError reports a non-2xx upstream response.
type HTTPError struct {
	Provider   ProviderName
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	detail := prune.Truncate(e.Body, maxErrorDetailBytes)
	if detail == "" {
		return fmt.Sprintf("%s search request failed (HTTP %d)", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s search request failed (HTTP %d): %s", e.Provider, e.StatusCode, detail)
}

func missingCredentialMessage(env string) string {
	return "Missing " + env + " env var"
}

func errorResult(message string) map[string]any {
	return map[string]any{"error": message}
}

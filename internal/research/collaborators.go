package research

import "context"

// LLM is the completion collaborator. The loop is provider-agnostic: the
// concrete client is resolved from an opaque (provider, model) reference by
// the registry outside this package.
type LLM interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Searcher is the web search collaborator. Both calls return deduplicable URL
// identities; everything else about the engine is an implementation detail.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]SourceRecord, error)
	SearchImages(ctx context.Context, query string, k int) ([]ImageRecord, error)
}

// Fetcher optionally enriches a source with extracted page content.
type Fetcher interface {
	Extract(ctx context.Context, url string) (string, error)
}

// ToolResult is the outcome of one external tool invocation.
type ToolResult struct {
	Status string // success, error
	Data   string
}

// ToolInvoker is the optional tool-invocation collaborator. A nil invoker or
// an empty server reference is a no-op, not an error.
type ToolInvoker interface {
	Invoke(ctx context.Context, server, tool string, payload map[string]any) (ToolResult, error)
}

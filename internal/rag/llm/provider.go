package llm

import "context"

// Provider is the opaque text-completion capability: one call per query,
// after retrieval has assembled the context block.
type Provider interface {
	Generate(ctx context.Context, question string, contextBlock string) (string, error)
}

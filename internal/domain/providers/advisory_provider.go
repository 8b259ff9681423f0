package providers

import (
	"context"
)

// AdvisoryProvider is a text-completion service that answers a user message
// under fixed system instructions.
type AdvisoryProvider interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

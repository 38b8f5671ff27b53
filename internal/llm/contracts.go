// Package llm is the model-assisted extraction path: it prompts a chat model
// for coverage JSON and hands the reply to the coverage normalizers.
package llm

import "context"

// Completer sends one system+user exchange to a chat model and returns the
// reply text as-is.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type ExtractRequest struct {
	Text         string
	FilenameHint string
}

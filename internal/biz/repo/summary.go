package repo

import "context"

// SummaryRewriter rewrites a formatted burst digest into tighter prose.
// Optional: implementations may call an LLM; callers must fall back to the
// original digest on any error.
type SummaryRewriter interface {
	Rewrite(ctx context.Context, digest string) (string, error)
}

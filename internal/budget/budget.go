// Package budget provides token budget estimation and grounding-context
// trimming for the answer synthesizer. Because the service supports multiple
// LLM backends with different tokenizers, this package uses a conservative
// character-based heuristic: 1 token ≈ 4 characters. Korean text tokenizes
// denser than English, so the estimate deliberately errs high to leave
// headroom for model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default grounding-context budget.
	// Conservative enough to fit within 8k-context models while leaving
	// room for the system instruction and the generated answer.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message carries a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimBlocks drops blocks from the tail of the slice until
// reserved + sum(blocks) fits within maxTokens. Blocks are assumed ranked
// best-first, so the least relevant candidates are dropped first.
// At least one block is always kept — an answer grounded in a single
// candidate beats an answer grounded in nothing.
func TrimBlocks(blocks []string, reserved, maxTokens int) []string {
	if len(blocks) == 0 {
		return blocks
	}

	total := reserved
	kept := 0
	for _, b := range blocks {
		total += Estimate(b)
		if kept > 0 && total > maxTokens {
			break
		}
		kept++
	}
	return blocks[:kept]
}

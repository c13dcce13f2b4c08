package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursetutor/internal/conversation"
	"coursetutor/internal/index"
	"coursetutor/internal/llm"
)

func scored(texts ...string) []index.ScoredChunk {
	out := make([]index.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = index.ScoredChunk{
			Chunk: index.Chunk{Ord: i, Text: t},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return out
}

func TestAssemble_MessageOrder(t *testing.T) {
	a := NewAssembler("", 0)

	turns := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "What is a bond?"},
		{Role: conversation.RoleAssistant, Content: "A debt instrument."},
	}
	messages := a.Assemble(scored("Bonds pay coupons."), turns, "How are they priced?")

	require.Len(t, messages, 4)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, llm.RoleUser, messages[1].Role)
	assert.Equal(t, "What is a bond?", messages[1].Content)
	assert.Equal(t, llm.RoleAssistant, messages[2].Role)
	assert.Equal(t, llm.RoleUser, messages[3].Role)
	assert.Equal(t, "How are they priced?", messages[3].Content)
}

func TestAssemble_SystemMessageCarriesContext(t *testing.T) {
	a := NewAssembler("", 0)

	messages := a.Assemble(scored("Bonds pay periodic coupon interest."), nil, "q")
	system := messages[0].Content

	assert.Contains(t, system, "Bonds pay periodic coupon interest.")
	assert.NotContains(t, system, "%s", "placeholder must be substituted")
}

func TestAssemble_BudgetDropsLeastSimilar(t *testing.T) {
	// Three 40-char chunks against a budget of 90: the third no longer fits
	// once separators are counted, and it is the least similar.
	a := NewAssembler("ctx:\n%s", 90)

	chunks := scored(
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	)
	system := a.Assemble(chunks, nil, "q")[0].Content

	assert.Contains(t, system, strings.Repeat("a", 40))
	assert.Contains(t, system, strings.Repeat("b", 40))
	assert.NotContains(t, system, strings.Repeat("c", 40), "least similar chunk must be dropped first")
}

func TestAssemble_TopChunkClippedWhenAloneOverBudget(t *testing.T) {
	a := NewAssembler("ctx:\n%s", 50)

	system := a.Assemble(scored(strings.Repeat("x", 200)), nil, "q")[0].Content

	assert.Contains(t, system, strings.Repeat("x", 50))
	assert.NotContains(t, system, strings.Repeat("x", 51),
		"top chunk must be clipped to the budget")
}

func TestAssemble_NoRetrievedChunks(t *testing.T) {
	a := NewAssembler("", 0)

	system := a.Assemble(nil, nil, "q")[0].Content
	assert.Contains(t, system, "(no relevant material found)")
}

func TestAssemble_CustomInstruction(t *testing.T) {
	a := NewAssembler("Tutor prompt. Material: %s End.", 0)

	system := a.Assemble(scored("chunk one"), nil, "q")[0].Content
	assert.Equal(t, "Tutor prompt. Material: chunk one End.", system)
}

// Package prompt assembles the message sequence sent to the generation
// capability: grounding instruction with retrieved context first, then the
// conversation so far, then the latest question.
package prompt

import (
	"strings"

	"coursetutor/internal/conversation"
	"coursetutor/internal/index"
	"coursetutor/internal/llm"
)

// DefaultContextBudget caps the characters of retrieved context substituted
// into the system message.
const DefaultContextBudget = 6000

// DefaultInstruction grounds the assistant in the retrieved material. The
// %s placeholder receives the concatenated context. Grounding is enforced by
// prompt content only, so it is best-effort.
const DefaultInstruction = `You are a course tutor. Answer the student's question using only the course material below. If the material does not cover the question, say so plainly and do not invent an answer.

Course material:
%s`

// Assembler builds generation prompts under a fixed context budget.
type Assembler struct {
	instruction string
	budget      int
}

// NewAssembler creates an Assembler. An empty instruction selects
// DefaultInstruction; budget <= 0 selects DefaultContextBudget. The
// instruction must contain a single %s for the context block.
func NewAssembler(instruction string, budget int) *Assembler {
	if instruction == "" {
		instruction = DefaultInstruction
	}
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	return &Assembler{instruction: instruction, budget: budget}
}

// Assemble produces the ordered message sequence: one system message with the
// retrieved context, all memory turns chronologically, and the question last.
// The ordering is fixed; callers rely on it for reproducibility.
func (a *Assembler) Assemble(retrieved []index.ScoredChunk, turns []conversation.Turn, question string) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: strings.Replace(a.instruction, "%s", a.contextBlock(retrieved), 1),
	})
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return messages
}

// contextBlock concatenates retrieved chunks in rank order under the budget.
// When the budget runs out, the least similar chunks are the ones dropped.
// The top-ranked chunk is always included, clipped if it alone exceeds the
// budget.
func (a *Assembler) contextBlock(retrieved []index.ScoredChunk) string {
	if len(retrieved) == 0 {
		return "(no relevant material found)"
	}

	var b strings.Builder
	for i, chunk := range retrieved {
		text := chunk.Text
		if i == 0 && len(text) > a.budget {
			text = text[:a.budget]
		}
		addition := len(text)
		if i > 0 {
			addition += 2 // separator
		}
		if b.Len()+addition > a.budget {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String()
}

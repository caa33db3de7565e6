package usecase

import (
	"fmt"
	"strings"

	"manual-assistant/internal/domain"
)

// maxPromptPassages caps how many retrieved passages are rendered into
// the generation prompt regardless of how many retrieval returned.
const maxPromptPassages = 12

// PromptInput contains the pieces that feed into the prompt builder.
type PromptInput struct {
	Question  string
	Passages  []domain.RetrievedPassage
	Followup  bool
	Prior     domain.ConversationContext
	MultiPart bool
}

// PromptBuilder builds the chat messages sent to the LLM.
type PromptBuilder interface {
	Build(input PromptInput) ([]domain.Message, error)
}

// OperatorPromptBuilder composes prompts for restaurant staff asking
// about their equipment: manual-grounded, stepwise, and phrased for
// someone standing at the machine.
type OperatorPromptBuilder struct {
	additionalInstructions []string
}

// NewOperatorPromptBuilder creates a prompt builder with optional
// extra instructions appended to the system message.
func NewOperatorPromptBuilder(additionalInstructions ...string) PromptBuilder {
	return &OperatorPromptBuilder{
		additionalInstructions: additionalInstructions,
	}
}

var systemInstructions = []string{
	"You are an equipment assistant for restaurant staff. You answer questions about kitchen equipment and POS terminals using the manual excerpts provided in the CONTEXT section.",
	"Ground every instruction in the CONTEXT. When the manuals describe buttons, menus, or labels, use their exact wording so the reader can find them on the device.",
	"Never tell the user to \"check the manual\" or \"refer to the documentation\". You ARE the manual. If the CONTEXT does not cover the question, say what is missing and suggest the closest covered procedure.",
	"Structure your answer as:",
	"  **Summary** - one or two sentences saying what to do.",
	"  **Steps** - a numbered list of concrete actions in order.",
	"  **Safety** - warnings from the manuals that apply, omit the section if none do.",
	"  **Follow-ups** - one or two short questions the user might ask next.",
	"When you offer the user a numbered choice of procedures, keep the numbering stable so they can answer with just the number.",
	"If the user replies with a bare affirmation such as \"yes\" or \"ok\", continue the procedure you were describing rather than starting over.",
	"Keep answers concise. Staff read these mid-shift, often on a phone.",
}

var multiPartInstruction = "The question has several parts. Answer each part under its own heading, in the order asked, before the closing sections."

// Build renders the Messages for the chat completion API.
func (b *OperatorPromptBuilder) Build(input PromptInput) ([]domain.Message, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	var sysSb strings.Builder
	for i, inst := range systemInstructions {
		if i > 0 {
			sysSb.WriteString("\n")
		}
		sysSb.WriteString(inst)
	}
	if input.MultiPart {
		sysSb.WriteString("\n")
		sysSb.WriteString(multiPartInstruction)
	}
	for _, inst := range b.additionalInstructions {
		sysSb.WriteString("\n")
		sysSb.WriteString(inst)
	}

	var userSb strings.Builder
	userSb.WriteString("CONTEXT:\n")
	passages := input.Passages
	if len(passages) > maxPromptPassages {
		passages = passages[:maxPromptPassages]
	}
	for i, p := range passages {
		userSb.WriteString(fmt.Sprintf("[Source %d]", i+1))
		if p.Metadata.Title != "" {
			userSb.WriteString(" ")
			userSb.WriteString(p.Metadata.Title)
		}
		if p.Metadata.PageNumber > 0 {
			userSb.WriteString(fmt.Sprintf(", page %d", p.Metadata.PageNumber))
		}
		userSb.WriteString("\n")
		userSb.WriteString(strings.TrimSpace(p.Content))
		userSb.WriteString("\n\n")
	}
	if len(passages) == 0 {
		userSb.WriteString("(no manual excerpts matched this question)\n\n")
	}

	if input.Followup && input.Prior.HasPrior() {
		userSb.WriteString("PREVIOUS QUESTION: ")
		userSb.WriteString(input.Prior.LastQuestion)
		userSb.WriteString("\n")
		if input.Prior.LastAnswer != "" {
			userSb.WriteString("PREVIOUS ANSWER:\n")
			userSb.WriteString(input.Prior.LastAnswer)
			userSb.WriteString("\n")
		}
		userSb.WriteString("\n")
	}

	userSb.WriteString("QUESTION: ")
	userSb.WriteString(strings.TrimSpace(input.Question))

	return []domain.Message{
		{Role: "system", Content: sysSb.String()},
		{Role: "user", Content: userSb.String()},
	}, nil
}

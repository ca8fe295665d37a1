package chat

import (
	"strings"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/db"
)

// ReferenceDocument is library content offered to the model as context.
type ReferenceDocument struct {
	Title   string
	Source  string
	Content string
}

// Assemble builds the message list for a completion: one system message, the
// history as alternating user/assistant pairs in order, then prompt. Nothing is
// truncated and the inputs are not modified.
func Assemble(history []db.ChatInteraction, prompt, systemPrompt string) []ai.Message {
	msgs := make([]ai.Message, 0, 2*len(history)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	for _, ci := range history {
		msgs = append(msgs,
			ai.Message{Role: ai.RoleUser, Content: ci.Prompt},
			ai.Message{Role: ai.RoleAssistant, Content: ci.Answer},
		)
	}
	return append(msgs, ai.Message{Role: ai.RoleUser, Content: prompt})
}

// AssembleWithDocuments is Assemble with docs appended to the system message.
func AssembleWithDocuments(history []db.ChatInteraction, prompt, systemPrompt string, docs []ReferenceDocument) []ai.Message {
	if len(docs) == 0 {
		return Assemble(history, prompt, systemPrompt)
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n## Reference documents\n")
	for _, d := range docs {
		sb.WriteString("\n### ")
		if d.Title != "" {
			sb.WriteString(d.Title)
		} else {
			sb.WriteString(d.Source)
		}
		if d.Source != "" && d.Title != "" {
			sb.WriteString(" (")
			sb.WriteString(d.Source)
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(d.Content))
		sb.WriteString("\n")
	}
	return Assemble(history, prompt, sb.String())
}

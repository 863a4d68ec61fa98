package rag

import (
	"fmt"
	"strings"

	"github.com/sentrasec/sentra/internal/knowledge"
)

const basePrompt = "You are a security operations assistant for a multi-tenant SOC platform. " +
	"Answer questions about security events, assets, vulnerabilities and incident response concisely and accurately."

const contextInstruction = "Use the numbered context documents below when they are relevant. " +
	"Prefer the supplied context over general knowledge; if the context does not cover the question, fall back to what you know."

const noContextInstruction = "No knowledge-base context is available for this question; answer from general knowledge."

// buildSystemPrompt assembles the system message, appending a numbered
// context block when any knowledge entries were retrieved.
func buildSystemPrompt(results []knowledge.SearchResult) string {
	if len(results) == 0 {
		return basePrompt + "\n\n" + noContextInstruction
	}

	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n\n")
	sb.WriteString(contextInstruction)
	sb.WriteString("\n\nContext:\n")
	for i, result := range results {
		fmt.Fprintf(&sb, "\nDocument %d:\n%s\n", i+1, result.Content)
	}
	return sb.String()
}

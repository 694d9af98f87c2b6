package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"datalens/ports"
)

// StructuredClient provides typed JSON responses from LLM calls
type StructuredClient[T any] struct {
	Client        ports.LLMClient
	SystemContext string
}

// NewStructuredClient creates a structured client over any LLM client
func NewStructuredClient[T any](client ports.LLMClient, systemContext string) *StructuredClient[T] {
	return &StructuredClient[T]{
		Client:        client,
		SystemContext: systemContext,
	}
}

// GetJSONResponse makes a typed LLM call and parses the JSON reply.
// An empty systemMessage falls back to the configured system context.
func (c *StructuredClient[T]) GetJSONResponse(ctx context.Context, systemMessage, prompt string) (*T, error) {
	systemContent := systemMessage
	if systemContent == "" {
		systemContent = c.SystemContext
	}

	log.Printf("[StructuredClient] Sending request - promptLength=%d", len(prompt))

	resp, err := c.Client.ChatCompletion(ctx, systemContent, prompt)
	if err != nil {
		return nil, err
	}

	content := cleanJSONContent(resp.Content)

	var result T
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Printf("[StructuredClient] ERROR: Failed to unmarshal JSON content: %v", err)
		return nil, fmt.Errorf("failed to parse JSON content into result type: %w\nCleaned content: %s", err, content)
	}

	return &result, nil
}

// cleanJSONContent removes markdown code fences and chatter around JSON
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	// Drop common chatter lines that precede JSON
	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" ||
			strings.HasPrefix(lower, "here is") ||
			strings.HasPrefix(lower, "the json") ||
			strings.HasPrefix(lower, "output:") ||
			strings.HasPrefix(lower, "response:") ||
			strings.HasPrefix(lower, "##") {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}
	content = strings.TrimSpace(strings.Join(cleanedLines, "\n"))

	// If a prose prefix remains before the JSON body, cut it off
	if idx := strings.IndexAny(content, "{["); idx > 0 {
		prefix := content[:idx]
		if !strings.ContainsAny(prefix, "{[") {
			content = content[idx:]
		}
	}

	return content
}

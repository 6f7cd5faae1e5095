package orchestrator

import "strings"

// ContextPlaceholder marks where document content goes in a prompt template.
const ContextPlaceholder = "{context}"

var braceUnescaper = strings.NewReplacer("{{", "{", "}}", "}")

// BuildPrompt substitutes content for every placeholder in template. Doubled
// braces in the template are literal braces. Content is inserted verbatim.
func BuildPrompt(template, content string) string {
	parts := strings.Split(template, ContextPlaceholder)
	for i, p := range parts {
		parts[i] = braceUnescaper.Replace(p)
	}
	return strings.Join(parts, content)
}

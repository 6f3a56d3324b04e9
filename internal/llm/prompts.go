package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/mindmap.txt
var mindmapPrompt string

// SystemInstruction returns the fixed instruction that constrains the model
// to the mindmap JSON shape.
func SystemInstruction() string {
	return strings.TrimSpace(mindmapPrompt)
}

package mindmap

import "strings"

const codeFence = "```"

// StripCodeFence removes a markdown fence wrapping the whole response.
//
// The input is trimmed. When it starts with ``` the first line (the opening
// fence and any language tag) and the last line are dropped and the remainder
// trimmed again. A fenced response with no line break yields "".
func StripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, codeFence) {
		return cleaned
	}
	_, rest, ok := strings.Cut(cleaned, "\n")
	if !ok {
		return ""
	}
	if i := strings.LastIndex(rest, "\n"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

package llm

import (
	"fmt"
	"strings"

	"mindmap-backend/internal/shared/util"
)

// maxErrorDetail caps how much of a provider reply is quoted in an error.
const maxErrorDetail = 512

// StatusError is a non-success reply from a provider.
type StatusError struct {
	Provider string
	Code     int
	Detail   string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s http status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.Code, e.Detail)
}

// NewStatusError trims detail and cuts it to maxErrorDetail bytes.
func NewStatusError(provider string, code int, detail string) *StatusError {
	return &StatusError{
		Provider: provider,
		Code:     code,
		Detail:   util.Truncate(strings.TrimSpace(detail), maxErrorDetail),
	}
}

package health

import (
	"os"
	"path/filepath"
)

// Service encapsulates health-related checks.
type Service struct {
	uploadDir string
	provider  string
	model     string
}

// NewService constructs a health service reporting on the upload root and
// the configured model.
func NewService(uploadDir, provider, model string) *Service {
	return &Service{uploadDir: uploadDir, provider: provider, model: model}
}

// Status reports whether the upload root can accept staged files.
func (s *Service) Status() (map[string]any, bool) {
	ok := s.uploadDirWritable()
	return map[string]any{
		"ok":       ok,
		"provider": s.provider,
		"model":    s.model,
	}, ok
}

func (s *Service) uploadDirWritable() bool {
	if s.uploadDir == "" {
		return false
	}
	f, err := os.CreateTemp(s.uploadDir, ".healthz-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name)) == nil
}

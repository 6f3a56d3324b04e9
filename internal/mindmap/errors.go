package mindmap

import (
	"errors"
	"fmt"

	"mindmap-backend/internal/shared/util"
)

// maxDetailLen caps the underlying error text shown to the user so the
// flash cookie stays within browser limits.
const maxDetailLen = 300

// Stage names the pipeline step a failure belongs to.
type Stage string

const (
	StageUpload  Stage = "upload"
	StageExtract Stage = "extract"
	StagePrompt  Stage = "prompt"
	StageDecode  Stage = "decode"
	StageSchema  Stage = "schema"
)

var (
	ErrNoFilePart          = errors.New("no file part")
	ErrNoSelectedFile      = errors.New("no selected file")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrInvalidJSON         = errors.New("invalid JSON response")
	ErrSchemaMismatch      = errors.New("mindmap does not match the expected structure")
)

// StageError tags err with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return string(e.Stage)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded on err, or "" if err is untagged.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// UserMessage maps a pipeline error to the text flashed to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFilePart):
		return "No file part"
	case errors.Is(err, ErrNoSelectedFile):
		return "No selected file"
	case errors.Is(err, ErrExtensionNotAllowed):
		return "File extension not allowed"
	case errors.Is(err, ErrInvalidJSON):
		return "Error: Invalid JSON response"
	case errors.Is(err, ErrSchemaMismatch):
		return "Error: Mindmap response does not match the expected structure"
	}

	var se *StageError
	if !errors.As(err, &se) || se.Err == nil {
		return "Unexpected error"
	}
	switch se.Stage {
	case StageExtract:
		return "Error extracting text: " + util.Truncate(se.Err.Error(), maxDetailLen)
	case StagePrompt:
		return "Error generating mindmap: " + util.Truncate(se.Err.Error(), maxDetailLen)
	case StageUpload:
		return "Error saving uploaded file"
	default:
		return "Unexpected error"
	}
}

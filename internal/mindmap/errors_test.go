package mindmap

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "no file part", err: stageErr(StageUpload, ErrNoFilePart), want: "No file part"},
		{name: "no selected file", err: stageErr(StageUpload, ErrNoSelectedFile), want: "No selected file"},
		{name: "extension", err: stageErr(StageUpload, ErrExtensionNotAllowed), want: "File extension not allowed"},
		{name: "staging", err: stageErr(StageUpload, errors.New("disk full")), want: "Error saving uploaded file"},
		{name: "extract", err: stageErr(StageExtract, errors.New("zip: not a valid zip file")), want: "Error extracting text: zip: not a valid zip file"},
		{name: "prompt", err: stageErr(StagePrompt, errors.New("quota exceeded")), want: "Error generating mindmap: quota exceeded"},
		{name: "decode", err: stageErr(StageDecode, fmt.Errorf("%w: eof", ErrInvalidJSON)), want: "Error: Invalid JSON response"},
		{name: "schema", err: stageErr(StageSchema, fmt.Errorf("%w: x", ErrSchemaMismatch)), want: "Error: Mindmap response does not match the expected structure"},
		{name: "untagged", err: errors.New("boom"), want: "Unexpected error"},
		{name: "nil", err: nil, want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Fatalf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStageOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", stageErr(StagePrompt, errors.New("timeout")))
	if got := StageOf(err); got != StagePrompt {
		t.Fatalf("StageOf = %q, want %q", got, StagePrompt)
	}
	if got := StageOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty stage, got %q", got)
	}
	if err.Error() != "handler: prompt: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestUserMessageCapsDetail(t *testing.T) {
	long := "<html>" + strings.Repeat("x", 5000) + "</html>"
	for _, stage := range []Stage{StageExtract, StagePrompt} {
		msg := UserMessage(stageErr(stage, errors.New(long)))
		if len(msg) > 64+maxDetailLen {
			t.Fatalf("%s: message not capped, len=%d", stage, len(msg))
		}
		if !strings.HasSuffix(msg, "...") || !strings.Contains(msg, "<html>xxx") {
			t.Fatalf("%s: unexpected message %q", stage, msg)
		}
	}
}

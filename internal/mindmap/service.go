package mindmap

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"mindmap-backend/internal/extract"
	"mindmap-backend/internal/llm"
	"mindmap-backend/internal/shared/server/middleware"
	"mindmap-backend/internal/shared/storage/object"
	"mindmap-backend/internal/shared/telemetry"
)

// Upload is a document received from a client.
type Upload struct {
	FileName string
	Body     io.Reader
}

// Result is a generated mindmap ready for rendering.
type Result struct {
	// JSON is the model reply, compacted.
	JSON     json.RawMessage
	Mindmap  *Mindmap
	UploadID string
	Ext      string
}

// Service runs the upload-to-mindmap pipeline.
type Service struct {
	store        object.Store
	llm          llm.Completer
	strictSchema bool
}

// NewService constructs a Service. strictSchema enables ParseStrict on every
// model reply.
func NewService(store object.Store, completer llm.Completer, strictSchema bool) *Service {
	return &Service{store: store, llm: completer, strictSchema: strictSchema}
}

// CheckFileName validates an upload name and returns its lower-cased extension.
func CheckFileName(fileName string) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", stageErr(StageUpload, ErrNoSelectedFile)
	}
	ext := extract.Ext(fileName)
	if !extract.Supported(ext) {
		return "", stageErr(StageUpload, ErrExtensionNotAllowed)
	}
	return ext, nil
}

// Generate stages the upload, extracts its text, prompts the model and
// validates the reply. The staged copy is removed before returning.
func (s *Service) Generate(ctx context.Context, up Upload) (Result, error) {
	ext, err := CheckFileName(up.FileName)
	if err != nil {
		return Result{}, err
	}

	obj, err := s.store.Save(ctx, up.FileName, up.Body)
	if err != nil {
		return Result{}, stageErr(StageUpload, err)
	}
	defer s.cleanup(ctx, obj)

	res := Result{UploadID: obj.ID, Ext: ext}

	text, err := s.extract(ctx, obj, ext)
	if err != nil {
		return res, err
	}

	raw, err := s.prompt(ctx, text)
	if err != nil {
		return res, err
	}

	data, err := s.decode(ctx, raw)
	if err != nil {
		return res, err
	}
	res.JSON = data

	if s.strictSchema {
		m, err := ParseStrict(data)
		if err != nil {
			return res, stageErr(StageSchema, err)
		}
		res.Mindmap = &m
	}

	telemetry.Info("mindmap.generated", map[string]any{
		"request_id":     middleware.RequestIDFrom(ctx),
		"upload_id":      obj.ID,
		"upload_sha256":  obj.SHA256,
		"file_ext":       ext,
		"text_chars":     len(text),
		"response_bytes": len(data),
	})
	return res, nil
}

func (s *Service) extract(ctx context.Context, obj object.Object, ext string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "mindmap.extract",
		attribute.String("file.ext", ext),
		attribute.Int64("file.size", obj.SizeBytes),
	)
	text, err := extract.ExtractFile(ctx, obj.Path, ext)
	telemetry.EndSpan(span, err)
	if err != nil {
		return "", stageErr(StageExtract, err)
	}
	return text, nil
}

func (s *Service) prompt(ctx context.Context, text string) (string, error) {
	if s.llm == nil {
		return "", stageErr(StagePrompt, llm.ErrNotConfigured)
	}
	ctx, span := telemetry.StartSpan(ctx, "mindmap.prompt", attribute.Int("text.chars", len(text)))
	raw, err := s.llm.Complete(ctx, text)
	telemetry.EndSpan(span, err)
	if err != nil {
		return "", stageErr(StagePrompt, err)
	}
	return raw, nil
}

func (s *Service) decode(ctx context.Context, raw string) (json.RawMessage, error) {
	_, span := telemetry.StartSpan(ctx, "mindmap.decode", attribute.Int("response.chars", len(raw)))
	data, err := Decode(StripCodeFence(raw))
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, stageErr(StageDecode, err)
	}
	return data, nil
}

func (s *Service) cleanup(ctx context.Context, obj object.Object) {
	if err := s.store.Remove(context.WithoutCancel(ctx), obj); err != nil {
		telemetry.Warn("upload.cleanup_failed", map[string]any{
			"request_id": middleware.RequestIDFrom(ctx),
			"upload_id":  obj.ID,
			"error":      err,
		})
	}
}

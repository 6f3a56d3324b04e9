package bootstrap

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mindmap-backend/internal/llm"
	"mindmap-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:            "dev",
		UploadDir:      t.TempDir(),
		MaxUploadBytes: config.DefaultMaxUploadBytes,
		LLMProvider:    config.ProviderGemini,
		LLMModel:       config.DefaultGeminiModel,
		LLMTimeout:     time.Second,
		SecretKey:      "test-secret",
	}
}

func TestBuildEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	cfg.StrictSchema = true

	var got string
	app, err := Build(context.Background(), cfg, WithLLM(llm.Func(func(ctx context.Context, text string) (string, error) {
		got = text
		return "```json\n{\"central_topic\":\"Animals\",\"branches\":[{\"topic\":\"Mammals\",\"children\":[{\"topic\":\"Cats\"},{\"topic\":\"Dogs\"}]}]}\n```", nil
	})))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "animals.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("Cats are mammals. Dogs are mammals too."))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got != "Cats are mammals. Dogs are mammals too." {
		t.Fatalf("model received %q", got)
	}
	if !strings.Contains(resp.Body.String(), `\"central_topic\":\"Animals\"`) {
		t.Fatalf("mindmap not rendered:\n%s", resp.Body.String())
	}
	entries, err := os.ReadDir(cfg.UploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("upload dir should be empty, found %d entries", len(entries))
	}
}

func TestBuildRequiresSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.SecretKey = ""
	if _, err := Build(context.Background(), cfg, WithLLM(llm.Func(nil))); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestBuildLLMProviders(t *testing.T) {
	cfg := testConfig(t)

	cfg.GeminiAPIKey = ""
	if _, err := BuildLLM(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing gemini key error, got %v", err)
	}

	cfg.LLMProvider = config.ProviderOpenAI
	cfg.OpenAIAPIKey = "key"
	cfg.LLMModel = "gpt-4o-mini"
	c, err := BuildLLM(context.Background(), cfg)
	if err != nil || c == nil {
		t.Fatalf("expected openai client, got %v", err)
	}

	cfg.LLMProvider = "anthropic"
	if _, err := BuildLLM(context.Background(), cfg); err == nil {
		t.Fatal("expected unsupported provider error")
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mindmap-backend/internal/bootstrap"
	"mindmap-backend/internal/extract"
	"mindmap-backend/internal/mindmap"
	"mindmap-backend/internal/shared/config"
	localstore "mindmap-backend/internal/shared/storage/object/local"
	"mindmap-backend/internal/shared/telemetry"
)

// buildLLM is replaced in tests.
var buildLLM = bootstrap.BuildLLM

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		exitErr(err.Error())
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := flag.NewFlagSet("mindmap", flag.ContinueOnError)
	filePath := flags.String("file", "", "Path to a .txt, .docx or .pdf document")
	outPath := flags.String("out", "", "Path to write the mindmap JSON (optional)")
	provider := flags.String("provider", cfg.LLMProvider, "LLM provider (gemini or openai)")
	model := flags.String("model", cfg.LLMModel, "LLM model")
	strict := flags.Bool("strict", cfg.StrictSchema, "Reject replies that do not match the mindmap structure")
	extractOnly := flags.Bool("extract-only", false, "Print the extracted text and skip the model call")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if strings.TrimSpace(*filePath) == "" {
		return errors.New("file path is required")
	}
	// stdout carries the mindmap; logs go to stderr.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer telemetry.SetLogger(logger)()
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ext, err := mindmap.CheckFileName(filepath.Base(*filePath))
	if err != nil {
		return errors.New(mindmap.UserMessage(err))
	}

	if *extractOnly {
		text, err := extract.ExtractFile(ctx, *filePath, ext)
		if err != nil {
			return fmt.Errorf("extract text: %w", err)
		}
		return writeOutput(stdout, *outPath, []byte(text))
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(*provider))
	cfg.LLMModel = *model
	if cfg.LLMProvider == config.ProviderGemini && strings.TrimSpace(cfg.LLMModel) == "" {
		cfg.LLMModel = config.DefaultGeminiModel
	}
	client, err := buildLLM(ctx, cfg)
	if err != nil {
		return err
	}

	staging, err := os.MkdirTemp("", "mindmap-cli-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)
	store, err := localstore.New(staging)
	if err != nil {
		return err
	}

	f, err := os.Open(*filePath)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	svc := mindmap.NewService(store, client, *strict)
	res, err := svc.Generate(ctx, mindmap.Upload{FileName: filepath.Base(*filePath), Body: f})
	if err != nil {
		return errors.New(mindmap.UserMessage(err))
	}

	pretty, err := prettyJSON(res.JSON)
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	return writeOutput(stdout, *outPath, pretty)
}

func writeOutput(stdout io.Writer, outPath string, data []byte) error {
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if _, err := stdout.Write(data); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		_, _ = io.WriteString(stdout, "\n")
	}
	return nil
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

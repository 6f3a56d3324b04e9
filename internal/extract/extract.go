package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	ExtTXT  = ".txt"
	ExtDOCX = ".docx"
	ExtPDF  = ".pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidUTF8       = errors.New("text is not valid UTF-8")
)

// Ext returns the lower-cased extension of fileName, including the dot.
// Leading dots of the base name do not start an extension, so ".txt" has none.
func Ext(fileName string) string {
	base := strings.TrimLeft(filepath.Base(fileName), ".")
	return strings.ToLower(filepath.Ext(base))
}

// Supported reports whether ext (as returned by Ext) can be extracted.
func Supported(ext string) bool {
	switch ext {
	case ExtTXT, ExtDOCX, ExtPDF:
		return true
	default:
		return false
	}
}

// ExtractFile reads the file at path and extracts its text according to ext.
func ExtractFile(ctx context.Context, path, ext string) (string, error) {
	if !Supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return ExtractBytes(ctx, data, ext)
}

// ExtractBytes extracts text from an in-memory document.
//
// Plain text is returned verbatim. DOCX yields one line per body paragraph,
// empty paragraphs included. PDF yields one line per page.
func ExtractBytes(ctx context.Context, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch ext {
	case ExtTXT:
		return extractTXT(data)
	case ExtDOCX:
		return extractDOCX(data)
	case ExtPDF:
		return extractPDF(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func extractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("pdf: malformed document: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}

	n := reader.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf: page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("docx: empty document")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("docx: word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	defer rc.Close()

	paragraphs, err := bodyParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// bodyParagraphs returns the text of each w:p that is a direct child of
// w:body, in document order. Paragraphs nested in tables or other containers
// are skipped, as is text-box content. Tabs and line breaks inside a run
// become \t and \n; page and column breaks add nothing.
func bodyParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// Text boxes are anchored inside runs but are not paragraph text.
			// mc:Fallback repeats the mc:Choice content for older readers.
			if t.Name.Local == "txbxContent" || t.Name.Local == "Fallback" {
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)
			switch {
			case t.Name.Local == "p" && parent == "body":
				inPara = true
				current.Reset()
			case !inPara:
			case t.Name.Local == "t":
				inText = true
			case t.Name.Local == "tab" && parent == "r":
				current.WriteByte('\t')
			case t.Name.Local == "cr" && parent == "r":
				current.WriteByte('\n')
			case t.Name.Local == "br" && parent == "r" && isTextWrappingBreak(t):
				current.WriteByte('\n')
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "p" && inPara && len(stack) > 0 && stack[len(stack)-1] == "body":
				inPara = false
				paragraphs = append(paragraphs, current.String())
			}
		}
	}
	return paragraphs, nil
}

// isTextWrappingBreak reports whether a w:br is a line break. A missing
// w:type means textWrapping.
func isTextWrappingBreak(br xml.StartElement) bool {
	for _, a := range br.Attr {
		if a.Name.Local == "type" {
			return a.Value == "" || a.Value == "textWrapping"
		}
	}
	return true
}

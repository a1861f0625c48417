package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PageExtractor turns raw file bytes into per-page plain text. Non-paginated
// formats return a single page.
type PageExtractor interface {
	ExtractPages(ctx context.Context, data []byte, filename string) ([]string, error)
}

var whitespaceRE = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// Extractor routes by file extension: PDFs go to the extraction service,
// markdown is rendered to plain text, everything else is treated as UTF-8.
type Extractor struct {
	pdf *PDFServiceClient
}

func NewExtractor(pdf *PDFServiceClient) *Extractor {
	return &Extractor{pdf: pdf}
}

func (e *Extractor) ExtractPages(ctx context.Context, data []byte, filename string) ([]string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "pdf":
		return e.pdf.ExtractPages(ctx, data)
	case "md":
		return []string{markdownToText(data)}, nil
	default:
		return []string{collapseWhitespace(string(data))}, nil
	}
}

// markdownToText strips markdown structure, keeping the document's prose.
func markdownToText(data []byte) string {
	root := goldmark.DefaultParser().Parse(text.NewReader(data))

	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return collapseWhitespace(sb.String())
}

// PDFServiceClient calls the external PDF extraction service, which returns
// page texts in document order.
type PDFServiceClient struct {
	baseURL string
	client  *http.Client
}

func NewPDFServiceClient(baseURL string) *PDFServiceClient {
	return &PDFServiceClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type pdfParseResponse struct {
	Pages []string `json:"pages"`
	Error string   `json:"error,omitempty"`
}

func (c *PDFServiceClient) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/parse", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call PDF service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF service response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PDF service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed pdfParseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode PDF service response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("PDF extraction failed: %s", parsed.Error)
	}

	pages := make([]string, len(parsed.Pages))
	for i, p := range parsed.Pages {
		pages[i] = collapseWhitespace(p)
	}
	return pages, nil
}

// Healthy reports whether the extraction service answers its health probe.
func (c *PDFServiceClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

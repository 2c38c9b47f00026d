package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/pdfcsv/internal/core"
)

const DefaultModel = "gemini-2.5-flash"

// ExtractionPrompt is sent next to the PDF on every request.
const ExtractionPrompt = `You are a precise data extraction engine.
Analyze the provided PDF document.
Extract all tabular data or structured lists found in the document.
Convert this data into a valid, standard CSV format.

Rules:
1. Output ONLY the CSV data.
2. Do not include markdown code blocks (like ` + "```csv ... ```" + `).
3. Do not include any introductory or concluding text.
4. If there are multiple tables, merge them if the columns align, or separate them with a blank line.
5. Ensure headers are accurate based on the PDF content.
6. Handle special characters by wrapping fields in double quotes if necessary.

If no tabular data is found, return an empty string.`

type GeminiExtractor struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

func NewGeminiExtractor(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiExtractor, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiExtractor{client: cl, modelName: modelName, logger: logger}, nil
}

func (g *GeminiExtractor) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// ExtractCSV asks the model for the CSV rendition of the document and
// returns it with any markdown fence removed.
func (g *GeminiExtractor) ExtractCSV(ctx context.Context, pdfBase64 string) (string, error) {
	parts, err := requestParts(pdfBase64)
	if err != nil {
		return "", err
	}

	start := time.Now()
	g.logger.Info("llm.gemini.request", "model", g.modelName, "pdf_bytes", len(parts[0].(genai.Blob).Data))

	resp, err := g.client.GenerativeModel(g.modelName).GenerateContent(ctx, parts...)
	if err != nil {
		g.logger.Error("llm.gemini.error", "model", g.modelName, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := StripCodeFence(responseText(resp))
	g.logger.Info("llm.gemini.response", "model", g.modelName, "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

// requestParts builds the inline PDF blob followed by the instruction text.
func requestParts(pdfBase64 string) ([]genai.Part, error) {
	data, err := base64.StdEncoding.DecodeString(pdfBase64)
	if err != nil {
		return nil, fmt.Errorf("decode pdf content: %w", err)
	}
	return []genai.Part{
		genai.Blob{MIMEType: "application/pdf", Data: data},
		genai.Text(ExtractionPrompt),
	}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var (
	leadingCSVFence = regexp.MustCompile("(?i)^```csv\\s*")
	leadingFence    = regexp.MustCompile("^```\\s*")
	trailingFence   = regexp.MustCompile("```$")
)

// StripCodeFence removes a markdown fence the model may add despite the prompt.
// Only a fence at the very start and one at the very end are touched.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = leadingCSVFence.ReplaceAllString(text, "")
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

var _ core.TableExtractor = (*GeminiExtractor)(nil)

package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for statement analysis.
const DefaultModelName = "gemini-2.5-flash"

// Extraction is the structured result of analyzing a statement PDF.
type Extraction struct {
	AccountNumber   string            `json:"account_number"`
	StartingBalance *float64          `json:"starting_balance"`
	EndingBalance   *float64          `json:"ending_balance"`
	Transactions    []ExtractedTxLine `json:"transactions"`
}

// ExtractedTxLine is one transaction line read off a statement. Type is
// either "deposit" or "withdrawal".
type ExtractedTxLine struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
}

// Analyzer extracts structured statement data from PDF bytes.
type Analyzer interface {
	Analyze(ctx context.Context, pdfBytes []byte) (*Extraction, error)
}

// GeminiAnalyzer sends the PDF to Gemini and parses its strict-JSON reply.
type GeminiAnalyzer struct {
	model string
}

// NewGeminiAnalyzer returns an analyzer using the given model, or
// DefaultModelName when model is empty.
func NewGeminiAnalyzer(model string) *GeminiAnalyzer {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiAnalyzer{model: model}
}

const analyzePrompt = "You are a bank statement parser for PDF bank statements.\n\n" +
	"Task:\n" +
	"- Read the attached statement and extract the account summary and ALL transactions.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"account_number\": string or null\n" +
	"- \"starting_balance\": number or null (the beginning balance)\n" +
	"- \"ending_balance\": number or null\n" +
	"- \"transactions\": array of objects, each with:\n" +
	"  - \"date\": string, ISO format \"YYYY-MM-DD\"\n" +
	"  - \"description\": string\n" +
	"  - \"amount\": number (always positive)\n" +
	"  - \"type\": \"deposit\" for money in, \"withdrawal\" for money out\n\n" +
	"Rules:\n" +
	"- If the statement has separate paid-out / paid-in columns, classify the line\n" +
	"  as withdrawal or deposit accordingly and keep the amount positive.\n" +
	"- If a field cannot be determined, set it to null.\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"

// Analyze implements Analyzer.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, pdfBytes []byte) (*Extraction, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Analyze: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: analyzePrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Analyze: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Analyze: empty response from model")
	}

	var extraction Extraction
	clean := cleanModelJSON(rawText)
	if err := json.Unmarshal([]byte(clean), &extraction); err != nil {
		return nil, fmt.Errorf("Analyze: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	return &extraction, nil
}

// cleanModelJSON strips Markdown code fences the model sometimes adds
// despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

var _ Analyzer = (*GeminiAnalyzer)(nil)

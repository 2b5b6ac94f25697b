package genai

import (
	"context"
	"encoding/base64"

	"github.com/isdelr/talakhisi-be/internal/models"
)

const summarizeInstruction = `You are an expert educator. Analyse the lesson and answer strictly in JSON, written in the language of the lesson.
Structure: { "subject": string, "summary": string, "keyTerms": [{"term": string, "definition": string}], "quiz": [{"question": string, "options": [string], "correctAnswer": number}], "paragraphs": [{"content": string, "importance": "High"|"Medium"|"Low", "importanceLabel": string, "reason": string}], "relatedResources": [{"title": string, "uri": string}], "overallLevel": string }`

const (
	summarizeTextPrompt  = "Summarise the following lesson as JSON:\n\n"
	summarizeMediaPrompt = "Analyse this educational document, summarise it and extract the quiz and key terms as JSON."
)

var summarizeTemperature = 0.2

// Lesson is the input of a summarization: either Text, or Data with its MimeType.
type Lesson struct {
	Text     string
	Data     []byte
	MimeType string
}

// HasMedia reports whether the lesson is a binary document rather than text.
func (l Lesson) HasMedia() bool {
	return len(l.Data) > 0
}

// Summarize sends a lesson to the model and parses the structured result. The
// caller assigns id, title and createdAt.
func (c *Client) Summarize(ctx context.Context, lesson Lesson) (*models.SummarizationResult, error) {
	var parts []part
	if lesson.HasMedia() {
		parts = []part{
			{InlineData: &blob{MimeType: lesson.MimeType, Data: base64.StdEncoding.EncodeToString(lesson.Data)}},
			{Text: summarizeMediaPrompt},
		}
	} else {
		parts = []part{{Text: summarizeTextPrompt + lesson.Text}}
	}

	resp, err := c.generate(ctx, c.model, generateRequest{
		Contents:          []content{{Role: "user", Parts: parts}},
		SystemInstruction: &content{Parts: []part{{Text: summarizeInstruction}}},
		GenerationConfig: &generationConfig{
			Temperature:      &summarizeTemperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, err
	}

	text := resp.text()
	if text == "" {
		return nil, ErrEmptyResponse
	}
	var result models.SummarizationResult
	if err := decodeJSON(text, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

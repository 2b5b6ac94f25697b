package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/isdelr/talakhisi-be/internal/genai"
	"github.com/isdelr/talakhisi-be/internal/models"
)

// ChatProvider answers questions about a lesson.
type ChatProvider interface {
	Chat(ctx context.Context, lesson string, history []models.ChatMessage, question string) (string, error)
}

// SpeechProvider synthesizes PCM16 speech.
type SpeechProvider interface {
	Speech(ctx context.Context, text string) ([]byte, error)
}

// AssistHandler serves the lesson chat and read-aloud endpoints.
type AssistHandler struct {
	chat   ChatProvider
	speech SpeechProvider
}

// NewAssistHandler creates a new AssistHandler.
func NewAssistHandler(chat ChatProvider, speech SpeechProvider) *AssistHandler {
	return &AssistHandler{chat: chat, speech: speech}
}

// ChatPayload is a question about a lesson with the conversation so far.
type ChatPayload struct {
	Lesson   string               `json:"lesson" validate:"required"`
	Question string               `json:"question" validate:"required,max=2000"`
	History  []models.ChatMessage `json:"history" validate:"max=50"`
}

// ChatResponse carries the model's answer.
type ChatResponse struct {
	Answer  models.ChatMessage   `json:"answer"`
	History []models.ChatMessage `json:"history"`
}

// SpeechPayload is the text to read aloud.
type SpeechPayload struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// SpeechSamples is the decoded form of synthesized speech.
type SpeechSamples struct {
	SampleRate int       `json:"sampleRate"`
	Channels   int       `json:"channels"`
	Samples    []float32 `json:"samples"`
}

// Chat answers a question and returns the extended history.
func (h *AssistHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var payload ChatPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid chat request")
		return
	}

	text, err := h.chat.Chat(r.Context(), payload.Lesson, payload.History, payload.Question)
	if err != nil {
		writeError(w, err, "Chat failed")
		return
	}

	answer := models.ChatMessage{Role: models.ChatRoleModel, Text: text}
	history := append(payload.History,
		models.ChatMessage{Role: models.ChatRoleUser, Text: payload.Question},
		answer,
	)
	writeJSON(w, http.StatusOK, ChatResponse{Answer: answer, History: history})
}

// Speech synthesizes text. It answers audio/wav by default and the decoded
// float samples with ?format=samples.
func (h *AssistHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var payload SpeechPayload
	if err := decodePayload(r, &payload); err != nil {
		writeError(w, err, "Invalid speech request")
		return
	}

	pcm, err := h.speech.Speech(r.Context(), payload.Text)
	if err != nil {
		writeError(w, err, "Speech synthesis failed")
		return
	}

	if r.URL.Query().Get("format") == "samples" {
		writeJSON(w, http.StatusOK, SpeechSamples{
			SampleRate: genai.SpeechSampleRate,
			Channels:   genai.SpeechChannels,
			Samples:    genai.DecodePCM16(pcm),
		})
		return
	}

	wav := genai.EncodeWAV(pcm, genai.SpeechSampleRate, genai.SpeechChannels)
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(wav)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}

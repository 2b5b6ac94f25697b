package controller

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/isdelr/talakhisi-be/internal/genai"
	"github.com/isdelr/talakhisi-be/internal/services"
)

// Input limits.
const (
	MinTextLength = 10
	MaxFileSize   = 10 * 1024 * 1024
	titleLength   = 30
)

// User-facing messages of failed submissions.
const (
	MsgTextTooShort       = "The lesson text is too short to analyse."
	MsgFileMissing        = "Please choose a file first."
	MsgFileTooLarge       = "The file is too large (max 10MB)."
	MsgUnsupportedFile    = "Only images and PDF files can be analysed."
	MsgCredentialMissing  = "No API key was found. Set it in the environment configuration."
	MsgCredentialRejected = "The API key is not valid. Please check the key."
	MsgUnexpected         = "An unexpected error occurred. Please try again."
)

// File is an uploaded lesson document.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Input is a lesson submission: text, or a file when File is set.
type Input struct {
	Text string
	File *File
}

// IsFile reports whether the submission is in file mode.
func (in Input) IsFile() bool {
	return in.File != nil
}

type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return services.ErrValidation }

// prepare validates the input and returns the lesson to summarize with its title.
func prepare(in Input) (genai.Lesson, string, error) {
	if !in.IsFile() {
		text := strings.TrimSpace(in.Text)
		if utf8.RuneCountInString(text) < MinTextLength {
			return genai.Lesson{}, "", &inputError{MsgTextTooShort}
		}
		return genai.Lesson{Text: in.Text}, truncateRunes(text, titleLength) + "...", nil
	}

	f := in.File
	if len(f.Data) == 0 {
		return genai.Lesson{}, "", &inputError{MsgFileMissing}
	}
	if len(f.Data) > MaxFileSize {
		return genai.Lesson{}, "", &inputError{MsgFileTooLarge}
	}
	mimeType, err := mediaType(f)
	if err != nil {
		return genai.Lesson{}, "", err
	}
	return genai.Lesson{Data: f.Data, MimeType: mimeType}, f.Name, nil
}

// mediaType returns the declared type, sniffing the content when none is given.
func mediaType(f *File) (string, error) {
	declared := strings.TrimSpace(f.MimeType)
	if declared == "" || declared == "application/octet-stream" {
		declared = mimetype.Detect(f.Data).String()
	}
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if strings.HasPrefix(base, "image/") || base == "application/pdf" {
		return base, nil
	}
	return "", &inputError{fmt.Sprintf("%s (got %s)", MsgUnsupportedFile, base)}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

package models

// ImportanceLevel ranks a paragraph of the lesson.
type ImportanceLevel string

const (
	ImportanceHigh   ImportanceLevel = "High"
	ImportanceMedium ImportanceLevel = "Medium"
	ImportanceLow    ImportanceLevel = "Low"
)

// KeyTerm is a glossary entry extracted from the lesson.
type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// QuizQuestion is a multiple-choice question; CorrectAnswer indexes Options.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Resource is an external reading suggestion.
type Resource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// LessonParagraph is one paragraph of the lesson with its importance ranking.
type LessonParagraph struct {
	Content         string          `json:"content"`
	Importance      ImportanceLevel `json:"importance"`
	ImportanceLabel string          `json:"importanceLabel"`
	Reason          string          `json:"reason"`
}

// SummarizationResult is the structured output of a processed lesson. A saved
// result is a library item.
type SummarizationResult struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Subject          string            `json:"subject"`
	Summary          string            `json:"summary"`
	KeyTerms         []KeyTerm         `json:"keyTerms"`
	Paragraphs       []LessonParagraph `json:"paragraphs"`
	Quiz             []QuizQuestion    `json:"quiz"`
	RelatedResources []Resource        `json:"relatedResources,omitempty"`
	OverallLevel     string            `json:"overallLevel"`
	CreatedAt        string            `json:"createdAt"`
}

// LibraryItem is a summarization result saved to an account's library.
type LibraryItem = SummarizationResult

// ChatRole is the author of a chat turn.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of a conversation about a lesson.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

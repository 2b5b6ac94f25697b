package genai

import (
	"context"
	"fmt"

	"github.com/isdelr/talakhisi-be/internal/models"
)

// NoAnswer is returned by Chat when the model produced no text.
const NoAnswer = "Sorry, there is no answer."

// Chat answers a question about a lesson, replaying the earlier turns of the
// conversation before the question.
func (c *Client) Chat(ctx context.Context, lesson string, history []models.ChatMessage, question string) (string, error) {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		role := string(m.Role)
		if m.Role != models.ChatRoleModel {
			role = string(models.ChatRoleUser)
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Text}}})
	}
	contents = append(contents, content{
		Role:  string(models.ChatRoleUser),
		Parts: []part{{Text: fmt.Sprintf("Based on the lesson: %s\nStudent question: %s", lesson, question)}},
	})

	resp, err := c.generate(ctx, c.model, generateRequest{Contents: contents})
	if err != nil {
		return "", err
	}
	if text := resp.text(); text != "" {
		return text, nil
	}
	return NoAnswer, nil
}

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/core"
)

const tutorSystemPrompt = `You are a multilingual, helpful assistant acting as a tutor. Your name is Edu. Your job is to teach the users. Follow these rules:

1. If a message is offensive, obscene, or unrelated to the subject matter (advertising, politics, profanity), politely decline.
2. Keep your answers clear, friendly and short, but informative.
3. Do not answer political, religious or personal questions.
4. Always answer in the language of the question.

Your writing style should be informative and logical. Today's date is %s.`

const retrievalInstruction = `
Use the following references to answer the user's question precisely. If the answer is not found directly in the references, answer from your own knowledge.`

const contextualQuestionTemplate = `First read these references:
'%s'

The course title:
'%s'

A short description of the course:
'%s'

Now, based on the references or your own knowledge, answer this question:
'%s'`

// Request is one conversational turn from a client: the accumulated message
// history plus an optional course the question should be grounded in.
type Request struct {
	// CourseID scopes retrieval to one course. Zero means no retrieval.
	CourseID core.ID

	// Messages is the conversation so far, oldest first. Entries with an
	// empty role are treated as user messages.
	Messages []ai.ChatMessage
}

// Session is the fully assembled message list for one request. It is
// ephemeral: built, streamed, and discarded.
type Session struct {
	Messages []ai.ChatMessage
}

// systemPrompt renders the tutoring system prompt for the given moment,
// extended with the retrieval instruction when course context is attached.
func systemPrompt(now time.Time, withRetrieval bool) string {
	prompt := fmt.Sprintf(tutorSystemPrompt, now.Format("2006.01.02"))
	if withRetrieval {
		prompt += retrievalInstruction
	}
	return prompt
}

// normalizeRole maps an empty role to the user role, matching how clients
// omit the role on plain questions.
func normalizeRole(role string) string {
	if strings.TrimSpace(role) == "" {
		return ai.RoleUser
	}
	return role
}

// lastUserIndex returns the index of the last user message, or -1.
func lastUserIndex(messages []ai.ChatMessage) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if normalizeRole(messages[i].Role) == ai.RoleUser {
			return i
		}
	}
	return -1
}

// contextualQuestion folds retrieved passages and course metadata around the
// user's question so the model answers from the course material first.
func contextualQuestion(course *core.Course, matches []*core.RetrievalMatch, question string) string {
	passages := make([]string, 0, len(matches))
	for _, match := range matches {
		passages = append(passages, match.Chunk.Text)
	}
	return fmt.Sprintf(contextualQuestionTemplate,
		strings.Join(passages, "\n\n"),
		course.Title,
		course.Description,
		question,
	)
}

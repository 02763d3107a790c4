package openai

import (
	"fmt"

	"github.com/poiesic/courseforge/core"
)

const courseResponseSchema = `{
  "title": "course title, at most 50 characters",
  "description": "one-sentence summary, at most 100 characters",
  "content": "the full course material as HTML",
  "movie": [
    {"scene": 1, "time": "0-12 s", "visuals": "what is shown", "narration": "what is spoken"}
  ],
  "music": {"style": "...", "tempo": "...", "mood": "..."},
  "quiz": [
    {
      "question": "...",
      "answers": [
        {"text": "...", "correct": true},
        {"text": "...", "correct": false},
        {"text": "...", "correct": false},
        {"text": "...", "correct": false}
      ]
    }
  ],
  "keywords": "comma-separated search keywords"
}`

const coursePromptTemplate = `You are an experienced teacher and instructional designer. Create a complete
mini course about the topic below, together with a storyboard for a short
explainer video of about %d seconds.

Topic: %s
Language of all output: %s

Return ONLY valid JSON matching this shape. Do not include any preamble,
explanation, or markdown fences. Start your response with the opening brace
and end with the closing brace:

%s

Rules:
- "title" is at most 50 characters; "description" at most 100.
- "content" is self-contained HTML covering the topic at an introductory
  level: headings, short paragraphs, and lists. No scripts or styles.
- "movie" has at least %d scenes whose time slots together cover the %d
  seconds. Narration must be speakable in the allotted slot.
- "quiz" has exactly %d questions. Every question has exactly 4 answers and
  exactly one of them has "correct": true.
- "keywords" is a single comma-separated string.
- The JSON must parse without errors; no trailing commas, no extra keys, and
  no text outside the object.`

// buildCoursePrompt renders the generation prompt for a topic request.
// The request is expected to be normalized.
func buildCoursePrompt(req *core.TopicRequest) string {
	return fmt.Sprintf(coursePromptTemplate,
		req.DurationSeconds,
		req.Topic,
		req.Language,
		courseResponseSchema,
		req.MinScenes,
		req.DurationSeconds,
		req.QuizCount,
	)
}

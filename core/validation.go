// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxTitleLength is the character limit for generated course titles.
	MaxTitleLength = 50

	// MaxDescriptionLength is the character limit for generated course descriptions.
	MaxDescriptionLength = 100

	// QuizAnswerCount is the required number of answer choices per quiz question.
	QuizAnswerCount = 4
)

// ValidateCourse validates a Course according to domain rules.
//
// Validation rules:
//   - At least one of Request.Topic, RawDocumentRef, MediaRef must be set,
//     otherwise the pipeline can never do anything with the course.
//
// NOT validated (populated by the pipeline):
//   - Title, Description, BodyHTML (set by the generation stage)
//   - MediaText, RawDocumentText (set by transcription / extraction)
//   - VectorIndexRef (set by the indexing stage)
//   - ID (0 is valid from database sequences)
func ValidateCourse(course *Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", ErrInvalidCourse)
	}

	hasTopic := course.Request != nil && course.Request.Topic != ""
	if !hasTopic && course.RawDocumentRef == "" && course.MediaRef == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, ErrEmptySource)
	}

	return nil
}

// ValidateTopicRequest validates a TopicRequest according to domain rules.
func ValidateTopicRequest(req *TopicRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidCourse)
	}
	if req.Topic == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, ErrEmptyTopic)
	}
	return nil
}

// ValidateCourseDocument validates the structured output of the generation
// stage. A document that fails validation is treated as malformed output and
// the course is retried on a later tick.
//
// Scene and quiz counts are NOT enforced against the request: downstream
// consumers must tolerate fewer items than requested.
func ValidateCourseDocument(doc *CourseDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}
	if utf8.RuneCountInString(doc.Title) > MaxTitleLength {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrTitleTooLong)
	}
	if utf8.RuneCountInString(doc.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrDescriptionTooLong)
	}

	for i, item := range doc.Quiz {
		if err := ValidateQuizItem(&item); err != nil {
			return fmt.Errorf("%w: question %d: %w", ErrInvalidDocument, i+1, err)
		}
	}

	return nil
}

// ValidateQuizItem checks the four-answers / one-correct shape of a question.
func ValidateQuizItem(item *QuizItem) error {
	if item == nil || len(item.Answers) != QuizAnswerCount {
		return ErrBadQuizShape
	}
	correct := 0
	for _, a := range item.Answers {
		if a.Correct {
			correct++
		}
	}
	if correct != 1 {
		return ErrBadQuizShape
	}
	return nil
}

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

import "errors"

// Domain validation errors
var (
	// ErrInvalidCourse indicates a Course failed validation.
	ErrInvalidCourse = errors.New("invalid course")

	// ErrInvalidDocument indicates a CourseDocument failed validation.
	ErrInvalidDocument = errors.New("invalid course document")

	// ErrEmptySource indicates a course carries neither a topic request,
	// a raw document, nor a media reference.
	ErrEmptySource = errors.New("course has no topic request, document, or media")

	// ErrEmptyTopic indicates a topic request without a topic.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrEmptyTitle indicates a generated document without a title.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong indicates a generated title above the 50 character limit.
	ErrTitleTooLong = errors.New("title exceeds 50 characters")

	// ErrDescriptionTooLong indicates a generated description above the 100 character limit.
	ErrDescriptionTooLong = errors.New("description exceeds 100 characters")

	// ErrBadQuizShape indicates a quiz question without exactly four answers
	// or without exactly one correct answer.
	ErrBadQuizShape = errors.New("quiz question must have four answers with exactly one correct")

	// ErrCorruptRecord indicates a stored record whose length prefix does not
	// fit the remaining data.
	ErrCorruptRecord = errors.New("corrupt record: length prefix exceeds remaining data")
)

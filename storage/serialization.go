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


package storage

import (
	"github.com/poiesic/courseforge/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalCourse serializes a Course to bytes.
func MarshalCourse(course *core.Course) []byte {
	buf := make([]byte, core.CourseMUS.Size(*course))
	core.CourseMUS.Marshal(*course, buf)
	return buf
}

// UnmarshalCourse deserializes a Course from bytes.
func UnmarshalCourse(data []byte) (*core.Course, error) {
	course, _, err := core.CourseMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// MarshalVectorChunk serializes a VectorChunk to bytes.
func MarshalVectorChunk(chunk *core.VectorChunk) []byte {
	buf := make([]byte, core.VectorChunkMUS.Size(*chunk))
	core.VectorChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalVectorChunk deserializes a VectorChunk from bytes.
func UnmarshalVectorChunk(data []byte) (*core.VectorChunk, error) {
	chunk, _, err := core.VectorChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

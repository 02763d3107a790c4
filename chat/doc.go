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


// Package chat assembles and streams tutoring conversations.
//
// The Service type builds the upstream message list for each request:
//   - A tutoring system prompt frames every conversation.
//   - When the request names a course, the last user question is embedded
//     and the most similar indexed passages of that course are folded into
//     the final user message together with the course title and description.
//
// Deltas stream back to the caller already deduplicated; the Service only
// decides what the model is asked.
package chat

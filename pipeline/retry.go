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


package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Remote AI calls inside a stage get a few quick retries before the stage
// surrenders the course to the next scheduler tick.
const (
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// RetryWithBackoff runs op up to maxAttempts times, doubling the wait between
// attempts starting from baseDelay. It returns nil on the first success, the
// context error if ctx ends before or between attempts, and otherwise the
// error of the final attempt.
func RetryWithBackoff(ctx context.Context, op func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := baseDelay
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		if err == nil {
			return nil
		}
		if attempt == maxAttempts {
			return err
		}
		slog.Debug("attempt failed, backing off",
			"attempt", attempt, "of", maxAttempts, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

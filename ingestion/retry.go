// Copyright 2026 Cadenza AI
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


package ingestion

import (
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff runs operation up to maxAttempts times, sleeping
// baseDelay<<(attempt-1) between failures. It returns nil on the first
// success, ctx.Err() as soon as the context is done, and otherwise the
// error of the final attempt. Embedding calls go through this because
// model endpoints routinely shed load under batch traffic.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err = operation(); err == nil {
			if attempt > 0 {
				slog.Debug("retried operation succeeded", "attempts", attempt+1)
			}
			return nil
		}

		// No sleep after the final attempt
		if attempt == maxAttempts-1 {
			break
		}
		slog.Debug("operation failed, backing off",
			"attempt", attempt+1,
			"maxAttempts", maxAttempts,
			"error", err)

		timer := time.NewTimer(baseDelay << attempt)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}

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


package harvest

import "errors"

var (
	// ErrNotAvailable indicates that a fetcher cannot provide a transcript
	// for the requested reference. A Chain treats it as a signal to try
	// the next fetcher.
	ErrNotAvailable = errors.New("transcript not available")

	// ErrEmptyTranscript indicates that a fetcher returned no usable text.
	ErrEmptyTranscript = errors.New("empty transcript")
)

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


package badger

import "github.com/cadenza-ai/mentor/storage"

// NewMemoryStores creates an in-memory knowledge index and session repository
// for testing. Returns index, sessions, backend, and error.
// Caller must close both stores and the backend when done.
func NewMemoryStores() (storage.KnowledgeIndex, storage.SessionRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	index, err := NewKnowledgeIndex(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	sessions, err := NewSessionRepository(backend)
	if err != nil {
		index.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return index, sessions, backend, nil
}

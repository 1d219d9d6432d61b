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


// Package ai provides abstractions for the model services used by mentor.
//
// This package defines interfaces for text embeddings and response
// generation. The core domain and business logic depend on these
// abstractions rather than concrete implementations.
//
//   - Embedder: generates vector embeddings from text
//   - ChatModel: generates responses from prompts
//   - Provider: aggregates both for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//     (vLLM, Ollama, OpenAI)
//   - ai/mock: deterministic test doubles for unit testing without
//     external services
//
// Public constructors in the implementation packages return interface
// types to enforce abstraction; mock constructors return concrete types
// so tests can inject behavior and assert on call counts.
package ai

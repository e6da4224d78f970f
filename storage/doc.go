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


// Package storage provides the storage abstraction for cached annotations.
//
// Annotating text with a statistical parser is the slowest stage of the
// pipeline. An AnnotationRepository keeps annotator output keyed by a
// content hash of (backend, model, language, text) so that repeated
// analyses of the same document skip the model entirely. Extracted
// concepts, relations and graphs are never stored; they are rebuilt for
// every request.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.AnnotationRepository interface:
//
//	repo, err := badger.NewAnnotationRepository(path)  // returns storage.AnnotationRepository
//
// Internal constructors (newBackend, newAnnotationRepository) return
// concrete types since they are only used within the implementation package.
//
// # Usage
//
//	repo, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage

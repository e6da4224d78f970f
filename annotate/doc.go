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


// Package annotate turns normalized text into annotated token sequences.
//
// Tokenization, part-of-speech tagging, sentence segmentation and
// dependency parsing are delegated to a Backend. A Backend loads one Model
// per language; the Registry keeps the loaded models for the life of the
// process and the Annotator runs them, applies the stop-word dictionaries
// and optionally caches the output.
//
// # Implementation Packages
//
//   - annotate/spacy: spaCy models driven through a Python worker process
//   - annotate/llm: an OpenAI-compatible chat model asked for UD annotations
//   - annotate/conllu: reading and writing pre-annotated CoNLL-U input
//   - annotate/mock: test doubles
//
// # Model Acquisition
//
// When a backend reports ErrModelMissing the Registry asks it to acquire
// the model exactly once and then loads again. Any failure after that
// surfaces as core.ErrModelUnavailable. Failed loads are not remembered,
// so a later request tries again.
//
// # Usage Example
//
//	registry, err := annotate.NewRegistry(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
//
//	annotator, err := annotate.NewAnnotator(registry)
//	tokens, err := annotator.Annotate(ctx, "La bicicleta es un medio de transporte", core.LanguageSpanish)
package annotate

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


// Package pipeline turns raw text into a concept graph.
//
// A Pipeline runs the stages in order: the text is normalized, annotated
// by a linguistic annotator, and the annotated tokens feed the concept and
// relation extractors whose output the graph builder merges into a
// weighted graph. Every stage after annotation is pure; all four products
// (tokens, concepts, relations and graph) are rebuilt for every request
// and never shared between requests.
//
// # Usage
//
//	p, err := pipeline.NewPipeline(annotator, pipeline.WithStrategy(core.StrategyCooccurrence))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Release()
//
//	result, err := p.Analyze(ctx, pipeline.Request{Text: text, Language: core.LanguageSpanish})
//	if result.Empty() {
//	    log.Println("nothing to map")
//	}
//
// Independent documents can be analyzed concurrently with AnalyzeBatch,
// which runs them on a bounded worker pool.
package pipeline

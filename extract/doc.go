// Package extract selects concepts and derives relations from annotated tokens.
//
// A token is a concept when it is a noun or proper noun and not a stop
// word. Concepts are keyed by their lowercase form, so "Paris" and "paris"
// count as the same concept.
//
// Relations are derived with one of two strategies:
//
//   - core.StrategyDependency: each concept is related to its direct
//     syntactic children that are verbs or nouns. Relations are directed.
//   - core.StrategyCooccurrence: concepts appearing in the same sentence
//     are related pairwise. Relations are undirected.
//
// Both extractors are pure functions over their input. Empty input yields
// empty output, never an error.
package extract

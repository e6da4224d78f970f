// Package llm implements annotate.Backend over an OpenAI-compatible chat model.
//
// The model is asked to tokenize, tag and parse the text and to answer with
// a JSON document of Universal Dependencies annotations. Responses are
// cleaned of code fences, repaired for common key quoting mistakes and
// parsed; a malformed response is requested again up to three times.
// Transport failures are retried with exponential backoff.
//
// Chat models cannot be installed on demand, so Acquire always fails with
// annotate.ErrAcquireUnsupported.
package llm

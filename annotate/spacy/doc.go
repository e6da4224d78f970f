// Package spacy implements annotate.Backend with spaCy pipelines.
//
// Every loaded model is a long-lived Python worker process started from an
// embedded script. The worker receives one JSON configuration line naming
// the pipeline, answers with a readiness line, and then annotates one JSON
// request per line. Requests to a worker are serialized.
//
// A pipeline that is not installed is reported as annotate.ErrModelMissing.
// Acquire installs it with "python -m spacy download".
package spacy

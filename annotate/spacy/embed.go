package spacy

import _ "embed"

//go:embed scripts/annotator.py
var embeddedWorkerScript []byte

const workerScriptName = "conceptmap_annotator.py"

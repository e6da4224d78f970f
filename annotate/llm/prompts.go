package llm

import (
	"fmt"

	"github.com/poiesic/conceptmap/core"
)

const annotationResponseSchema = `{
  "type": "object",
  "properties": {
    "tokens": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": "string"},
          "pos": {"type": "string", "enum": ["ADJ","ADP","ADV","AUX","CCONJ","DET","INTJ","NOUN","NUM","PART","PRON","PROPN","PUNCT","SCONJ","SYM","VERB","X"]},
          "head": {"type": "integer", "minimum": -1},
          "sent": {"type": "integer", "minimum": 0}
        },
        "required": ["text", "pos", "head", "sent"],
        "additionalProperties": false
      }
    }
  },
  "required": ["tokens"],
  "additionalProperties": false
}`

const annotationPromptTemplate = `You are a dependency parser for %s text. Tokenize the given text, tag every
token with its Universal Dependencies part of speech, split it into sentences and attach every token to its
syntactic head.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- List tokens in the order they appear in the text. Do not skip, merge or correct words.
- "head" is the 0-based index of the head token in the tokens array. The root of each sentence has head -1.
- A head must belong to the same sentence as its dependent.
- "sent" is the 0-based sentence index. It starts at 0 and never decreases.
- The input may have no punctuation; infer sentence boundaries from the syntax.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "The cat chased the mouse The mouse ran"
Output:
{
  "tokens": [
    {"text":"The","pos":"DET","head":1,"sent":0},
    {"text":"cat","pos":"NOUN","head":2,"sent":0},
    {"text":"chased","pos":"VERB","head":-1,"sent":0},
    {"text":"the","pos":"DET","head":4,"sent":0},
    {"text":"mouse","pos":"NOUN","head":2,"sent":0},
    {"text":"The","pos":"DET","head":6,"sent":1},
    {"text":"mouse","pos":"NOUN","head":7,"sent":1},
    {"text":"ran","pos":"VERB","head":-1,"sent":1}
  ]
}`

var languageNames = map[core.Language]string{
	core.LanguageSpanish: "Spanish",
	core.LanguageEnglish: "English",
}

// buildSystemPrompt creates the system prompt for a language.
func buildSystemPrompt(lang core.Language) string {
	name, ok := languageNames[lang]
	if !ok {
		name = string(lang)
	}
	return fmt.Sprintf(annotationPromptTemplate, name, annotationResponseSchema)
}

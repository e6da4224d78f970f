// Package conllu reads and writes annotated tokens in CoNLL-U format.
//
// Only the columns the concept extractors use are interpreted: FORM,
// UPOS and HEAD. Multiword token ranges ("3-4") and empty nodes ("5.1")
// are skipped. Comment lines start with '#' and blank lines end a
// sentence.
package conllu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/poiesic/conceptmap/core"
)

const (
	fieldSeparator = "\t"
	fieldCount     = 10
	empty          = "_"
)

// Column positions
const (
	colID = iota
	colForm
	colLemma
	colUPOS
	colXPOS
	colFeats
	colHead
	colDeprel
	colDeps
	colMisc
)

var (
	// ErrMalformedRow indicates a line that is not a valid CoNLL-U word row.
	ErrMalformedRow = errors.New("malformed conllu row")
)

// row is a parsed word line with sentence-local ID and HEAD.
type row struct {
	id   int
	form string
	pos  core.POS
	head int
}

func parseRow(line string) (row, bool, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != fieldCount {
		return row{}, false, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRow, fieldCount, len(fields))
	}
	if strings.ContainsAny(fields[colID], "-.") {
		return row{}, false, nil
	}

	id, err := strconv.Atoi(fields[colID])
	if err != nil || id < 1 {
		return row{}, false, fmt.Errorf("%w: bad ID %q", ErrMalformedRow, fields[colID])
	}

	head := 0
	if fields[colHead] != empty {
		head, err = strconv.Atoi(fields[colHead])
		if err != nil || head < 0 {
			return row{}, false, fmt.Errorf("%w: bad HEAD %q", ErrMalformedRow, fields[colHead])
		}
	}

	return row{
		id:   id,
		form: fields[colForm],
		pos:  core.ParsePOS(fields[colUPOS]),
		head: head,
	}, true, nil
}

// Read parses CoNLL-U input into a single token sequence.
// Sentence indexes count the sentences in the input. HEAD values are
// resolved to indexes in the returned sequence; roots and heads naming a
// missing word get core.NoHead. Lower and IsStop are left empty.
func Read(r io.Reader) ([]core.Token, error) {
	var (
		tokens   []core.Token
		sentence []row
		index    = 0
		lineNo   = 0
	)

	flush := func() {
		if len(sentence) == 0 {
			return
		}
		offset := len(tokens)
		position := make(map[int]int, len(sentence))
		for i, rw := range sentence {
			position[rw.id] = offset + i
		}
		for _, rw := range sentence {
			head := core.NoHead
			if p, ok := position[rw.head]; ok && rw.head != 0 {
				head = p
			}
			tokens = append(tokens, core.Token{
				Text:     rw.form,
				POS:      rw.pos,
				Sentence: index,
				Head:     head,
			})
		}
		sentence = sentence[:0]
		index++
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case strings.HasPrefix(line, "#"):
		default:
			rw, ok, err := parseRow(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if ok {
				sentence = append(sentence, rw)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if tokens == nil {
		tokens = []core.Token{}
	}
	return tokens, nil
}

// Write dumps tokens as CoNLL-U, one block per sentence.
// LEMMA carries the lowercase form and MISC marks stop words with
// "Stop=Yes". Heads pointing outside the token's sentence are written as
// roots.
func Write(w io.Writer, tokens []core.Token) error {
	bw := bufio.NewWriter(w)

	start := 0
	for start < len(tokens) {
		end := start
		for end < len(tokens) && tokens[end].Sentence == tokens[start].Sentence {
			end++
		}
		if err := writeSentence(bw, tokens, start, end); err != nil {
			return err
		}
		start = end
	}
	return bw.Flush()
}

func writeSentence(w *bufio.Writer, tokens []core.Token, start, end int) error {
	words := make([]string, 0, end-start)
	for _, tok := range tokens[start:end] {
		words = append(words, tok.Text)
	}
	if _, err := fmt.Fprintf(w, "# sent_id = %d\n# text = %s\n", tokens[start].Sentence+1, strings.Join(words, " ")); err != nil {
		return err
	}

	for i := start; i < end; i++ {
		tok := tokens[i]
		fields := make([]string, fieldCount)
		for j := range fields {
			fields[j] = empty
		}

		fields[colID] = strconv.Itoa(i - start + 1)
		fields[colForm] = tok.Text
		if tok.Lower != "" {
			fields[colLemma] = tok.Lower
		}
		fields[colUPOS] = upos(tok.POS)
		fields[colHead] = "0"
		fields[colDeprel] = "root"
		if tok.HasHead() && tok.Head >= start && tok.Head < end {
			fields[colHead] = strconv.Itoa(tok.Head - start + 1)
			fields[colDeprel] = "dep"
		}
		if tok.IsStop {
			fields[colMisc] = "Stop=Yes"
		}

		if _, err := w.WriteString(strings.Join(fields, fieldSeparator) + "\n"); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func upos(p core.POS) string {
	if p == core.POSOther {
		return "X"
	}
	return p.String()
}

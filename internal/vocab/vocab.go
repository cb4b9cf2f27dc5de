// Package vocab parses caption vocabularies in the word-counts format: one
// "word count" pair per line, ordered by id.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel words expected in every caption vocabulary.
const (
	StartWord   = "<S>"
	EndWord     = "</S>"
	UnknownWord = "<UNK>"
)

// Vocabulary maps between caption words and token ids. Ids outside the
// vocabulary resolve to the unknown word rather than failing, matching the
// tolerant lookup the caption layer relies on.
type Vocabulary struct {
	words []string
	ids   map[string]int32

	start int32
	end   int32
	unk   int32
}

// Load reads a word-counts file from path.
func Load(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	v, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

// Parse reads word-count lines from r. Counts are ignored beyond syntax
// checking; the line order defines the ids. The unknown word is appended
// if the file does not carry one.
func Parse(r io.Reader) (*Vocabulary, error) {
	var words []string
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"word count\", got %q", line, text)
		}
		words = append(words, fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New(words)
}

// New builds a vocabulary from an ordered word list. Start and end
// sentinels must be present; the unknown word is appended when missing.
func New(words []string) (*Vocabulary, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}

	ids := make(map[string]int32, len(words)+1)
	for i, w := range words {
		if _, dup := ids[w]; dup {
			return nil, fmt.Errorf("duplicate word %q", w)
		}
		ids[w] = int32(i)
	}
	if _, ok := ids[UnknownWord]; !ok {
		words = append(append([]string(nil), words...), UnknownWord)
		ids[UnknownWord] = int32(len(words) - 1)
	}

	start, ok := ids[StartWord]
	if !ok {
		return nil, fmt.Errorf("missing start word %q", StartWord)
	}
	end, ok := ids[EndWord]
	if !ok {
		return nil, fmt.Errorf("missing end word %q", EndWord)
	}

	return &Vocabulary{
		words: words,
		ids:   ids,
		start: start,
		end:   end,
		unk:   ids[UnknownWord],
	}, nil
}

// Len returns the vocabulary size, unknown word included.
func (v *Vocabulary) Len() int { return len(v.words) }

func (v *Vocabulary) StartID() int32   { return v.start }
func (v *Vocabulary) EndID() int32     { return v.end }
func (v *Vocabulary) UnknownID() int32 { return v.unk }

// TokenToID resolves a word, falling back to the unknown id.
func (v *Vocabulary) TokenToID(word string) int32 {
	if id, ok := v.ids[word]; ok {
		return id
	}
	return v.unk
}

// IDToToken resolves an id, falling back to the unknown word for ids the
// vocabulary does not cover.
func (v *Vocabulary) IDToToken(id int32) string {
	if id < 0 || int(id) >= len(v.words) {
		return UnknownWord
	}
	return v.words[id]
}
